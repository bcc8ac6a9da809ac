// internal/tui/chat_test.go
package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/poegate/poegate/internal/appconfig"
	"github.com/poegate/poegate/internal/modality"
	"github.com/poegate/poegate/internal/models"
)

// stubModel is a minimal facade used to exercise the UI without a network.
type stubModel struct {
	id        string
	name      string
	mod       modality.Modality
	canStream bool
	text      string
}

func (s stubModel) ID() string                    { return s.id }
func (s stubModel) Name() string                  { return s.name }
func (s stubModel) Modality() modality.Modality   { return s.mod }
func (s stubModel) OptionsSchema() map[string]any { return map[string]any{"type": "object"} }
func (s stubModel) CanStream() bool               { return s.canStream }

func (s stubModel) Complete(ctx context.Context, req models.Request) (*models.Response, error) {
	return &models.Response{Text: s.text, Metadata: models.Metadata{Model: s.name}}, nil
}

func (s stubModel) Stream(ctx context.Context, req models.Request, cb models.Callbacks) error {
	if cb.OnChunk != nil {
		if err := cb.OnChunk(s.text); err != nil {
			return nil
		}
	}
	if cb.OnComplete != nil {
		return cb.OnComplete(models.Metadata{Model: s.name, FinishReason: "stop"})
	}
	return nil
}

func testModels() []models.Model {
	return []models.Model{
		stubModel{id: "poe/gpt_4o", name: "GPT-4o", mod: modality.Text, canStream: true, text: "hello"},
		stubModel{id: "poe/flux_pro", name: "FLUX-pro", mod: modality.Image, text: "https://example.test/img.png"},
	}
}

// TestUpdate verifies the model's state transitions for key presses, window
// sizing, and the streaming message flow.
func TestUpdate(t *testing.T) {
	cfg := &appconfig.Config{}
	m := initialChatModel(context.Background(), cfg, testModels())

	if m.state != viewModelSelector {
		t.Errorf("Expected initial state to be viewModelSelector, got %v", m.state)
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Error("Expected a quit command, but got nil")
	}

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Error("Expected a quit command, but got nil")
	}

	newModel, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m = newModel.(*chatModel)
	if m.width != 100 || m.height != 40 {
		t.Errorf("Expected width and height to be 100x40, got %dx%d", m.width, m.height)
	}

	newModel, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = newModel.(*chatModel)
	if m.state != viewChat {
		t.Errorf("Expected state to be viewChat after selection, got %v", m.state)
	}
	if m.selected == nil || m.selected.Name() != "GPT-4o" {
		t.Errorf("Expected first model to be selected, got %v", m.selected)
	}

	m.pendingPrompt = "hi"
	m.isLoading = true
	newModel, _ = m.Update(streamChunkMsg("hel"))
	m = newModel.(*chatModel)
	newModel, _ = m.Update(streamChunkMsg("lo"))
	m = newModel.(*chatModel)
	if got := m.responseBuf.String(); got != "hello" {
		t.Errorf("Expected buffered response 'hello', got %q", got)
	}

	newModel, _ = m.Update(streamEndMsg{meta: models.Metadata{Model: "GPT-4o", FinishReason: "stop"}})
	m = newModel.(*chatModel)
	if m.isLoading {
		t.Error("Expected loading to stop after stream end")
	}
	if len(m.turns) != 1 || m.turns[0].Prompt != "hi" || m.turns[0].Response != "hello" {
		t.Errorf("Expected one recorded turn, got %+v", m.turns)
	}
	if m.responseBuf.Len() != 0 {
		t.Error("Expected response buffer to be reset after stream end")
	}
}

// TestView checks that the rendered UI matches the model's state.
func TestView(t *testing.T) {
	cfg := &appconfig.Config{}
	m := initialChatModel(context.Background(), cfg, testModels())

	m.width = 0
	if view := m.View(); view != "Initializing..." {
		t.Errorf("Expected view to be 'Initializing...', got '%s'", view)
	}

	m.width = 100
	m.height = 40
	if view := m.View(); !strings.Contains(view, "Select a Poe Model") {
		t.Errorf("Expected view to contain 'Select a Poe Model', got '%s'", view)
	}

	m.state = viewChat
	m.selected = testModels()[0]
	view := m.View()
	if !strings.Contains(view, "GPT-4o") {
		t.Errorf("Expected chat view to show the selected model, got '%s'", view)
	}
}

// TestRenderTurns verifies history formatting including in-flight exchanges.
func TestRenderTurns(t *testing.T) {
	turns := []chatTurn{
		{Prompt: "first question", Response: "first answer"},
	}

	out := renderTurns(turns, "second question", "partial ans", 80)
	for _, want := range []string{"first question", "first answer", "second question", "partial ans"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected rendered turns to contain %q, got %q", want, out)
		}
	}

	idxPrompt := strings.Index(out, "first question")
	idxAnswer := strings.Index(out, "first answer")
	if idxPrompt > idxAnswer {
		t.Error("Expected prompt to render before its response")
	}

	if out := renderTurns(nil, "", "", 80); out != "" {
		t.Errorf("Expected empty render for no turns, got %q", out)
	}
}

// TestModelItemDesc verifies the selector description for each facade kind.
func TestModelItemDesc(t *testing.T) {
	ms := testModels()

	textDesc := modelItemDesc(ms[0])
	if !strings.Contains(textDesc, "streaming") || !strings.Contains(textDesc, "text") {
		t.Errorf("Expected text model description to note streaming, got %q", textDesc)
	}

	imageDesc := modelItemDesc(ms[1])
	if !strings.Contains(imageDesc, "buffered") || !strings.Contains(imageDesc, "image") {
		t.Errorf("Expected image model description to note buffered delivery, got %q", imageDesc)
	}
}

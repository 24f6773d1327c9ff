package layers

import (
	"context"

	"github.com/BlackRRR/persona-bot/internal/app/model"
)

// AdminHandler runs an operator command and returns the reply text.
type AdminHandler func(ctx context.Context, s *model.Situation) (string, error)

// AdminHandlers are checked before dispatch and only for admins. They are
// kept out of the registries because they change process state.
type AdminHandlers struct {
	Handlers map[string]AdminHandler
}

func NewAdminHandlers() *AdminHandlers {
	return &AdminHandlers{Handlers: map[string]AdminHandler{}}
}

func (h *AdminHandlers) GetHandler(command string) AdminHandler {
	return h.Handlers[command]
}

func (h *AdminHandlers) OnCommand(command string, handler AdminHandler) {
	h.Handlers[command] = handler
}

func (h *AdminHandlers) Commands() []string {
	commands := make([]string, 0, len(h.Handlers))
	for command := range h.Handlers {
		commands = append(commands, command)
	}
	return commands
}

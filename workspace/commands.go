package workspace

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

const (
	CommandProgress              = "progress"
	CommandRegisterCompletions   = "registerCompletions"
	CommandUnregisterCompletions = "unregisterCompletions"
)

// Commands lists the commands served by workspace/executeCommand.
var Commands = []string{
	CommandProgress,
	CommandRegisterCompletions,
	CommandUnregisterCompletions,
}

const (
	methodRegisterCapability   = "client/registerCapability"
	methodUnregisterCapability = "client/unregisterCapability"
	methodShowMessage          = "window/showMessage"
	methodProgressCreate       = "window/workDoneProgress/create"
	methodProgress             = "$/progress"
	methodCompletion           = "textDocument/completion"
	methodPublishDiagnostics   = "textDocument/publishDiagnostics"
)

const progressSteps = 10

// registrations tracks the completion registration made by
// registerCompletions so that unregisterCompletions can withdraw it.
type registrations struct {
	mu         sync.Mutex
	completion string
}

func (ls *LSPServer) executeCommand(ctx *glsp.Context, params *protocol.ExecuteCommandParams) (any, error) {
	ls.log.Infof("execute command %s", params.Command)
	switch params.Command {
	case CommandProgress:
		go ls.progress(ctx)
		return nil, nil
	case CommandRegisterCompletions:
		ls.registerCompletions(ctx)
		return nil, nil
	case CommandUnregisterCompletions:
		ls.unregisterCompletions(ctx)
		return nil, nil
	}
	return nil, fmt.Errorf("unknown command %q", params.Command)
}

func (ls *LSPServer) registerCompletions(ctx *glsp.Context) {
	ls.registrations.mu.Lock()
	defer ls.registrations.mu.Unlock()
	if ls.registrations.completion != "" {
		showMessage(ctx, protocol.MessageTypeWarning, "Completions method is already registered")
		return
	}

	id := uuid.New().String()
	ctx.Call(methodRegisterCapability, protocol.RegistrationParams{
		Registrations: []protocol.Registration{{
			ID:     id,
			Method: methodCompletion,
			RegisterOptions: protocol.CompletionOptions{
				TriggerCharacters: completionTriggers,
			},
		}},
	}, nil)
	ls.registrations.completion = id
	showMessage(ctx, protocol.MessageTypeInfo, "Successfully registered completions method")
}

func (ls *LSPServer) unregisterCompletions(ctx *glsp.Context) {
	ls.registrations.mu.Lock()
	defer ls.registrations.mu.Unlock()
	if ls.registrations.completion == "" {
		showMessage(ctx, protocol.MessageTypeWarning, "Completions method is not registered")
		return
	}

	ctx.Call(methodUnregisterCapability, protocol.UnregistrationParams{
		Unregisterations: []protocol.Unregistration{{
			ID:     ls.registrations.completion,
			Method: methodCompletion,
		}},
	}, nil)
	ls.registrations.completion = ""
	showMessage(ctx, protocol.MessageTypeInfo, "Successfully unregistered completions method")
}

// progress reports a work-done progress from 0 to 100 percent, pausing
// between steps.
func (ls *LSPServer) progress(ctx *glsp.Context) {
	token := protocol.ProgressToken{Value: uuid.New().String()}
	ctx.Call(methodProgressCreate, protocol.WorkDoneProgressCreateParams{Token: token}, nil)

	ctx.Notify(methodProgress, protocol.ProgressParams{
		Token: token,
		Value: protocol.WorkDoneProgressBegin{
			Kind:       "begin",
			Title:      "Indexing",
			Percentage: uintPtr(0),
		},
	})
	for i := 1; i < progressSteps; i++ {
		ctx.Notify(methodProgress, protocol.ProgressParams{
			Token: token,
			Value: protocol.WorkDoneProgressReport{
				Kind:       "report",
				Message:    strPtr(fmt.Sprintf("%d%%", i*10)),
				Percentage: uintPtr(protocol.UInteger(i * 10)),
			},
		})
		time.Sleep(ls.options.progressDelay)
	}
	ctx.Notify(methodProgress, protocol.ProgressParams{
		Token: token,
		Value: protocol.WorkDoneProgressEnd{
			Kind:    "end",
			Message: strPtr("Finished"),
		},
	})
}

func showMessage(ctx *glsp.Context, kind protocol.MessageType, message string) {
	ctx.Notify(methodShowMessage, protocol.ShowMessageParams{
		Type:    kind,
		Message: message,
	})
}

func uintPtr(u protocol.UInteger) *protocol.UInteger {
	return &u
}

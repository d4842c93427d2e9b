package voicechat

import (
	"fmt"
	"io"
)

// Factory functions for common handlers

// CreateLoggingTextHandler logs agent utterances through the global
// logger.
func CreateLoggingTextHandler() TextHandler {
	logger := GetGlobalLogger().WithComponent("agent")
	return func(text string) {
		logger.Infof("Agent: %s", text)
	}
}

// CreatePrintTextHandler writes agent utterances to w, one per line.
func CreatePrintTextHandler(w io.Writer) TextHandler {
	return func(text string) {
		fmt.Fprintf(w, "AGENT: %s\n", text)
	}
}

// CreateStatusLoggingHandler logs client status transitions, then
// forwards to callback when non-nil.
func CreateStatusLoggingHandler(callback StatusHandler) StatusHandler {
	logger := GetGlobalLogger().WithComponent("status")
	return func(status ClientStatus) {
		logger.Infof("Status changed to: %s", status)
		if callback != nil {
			callback(status)
		}
	}
}

// CreateErrorLoggingHandler logs session errors with a prefix.
func CreateErrorLoggingHandler(prefix string) ErrorHandler {
	logger := GetGlobalLogger().WithComponent(prefix)
	return func(err *ChatError) {
		if err != nil {
			logger.LogError(err)
		}
	}
}

// ChainTextHandlers runs handlers in order for each utterance.
func ChainTextHandlers(handlers ...TextHandler) TextHandler {
	return func(text string) {
		for _, h := range handlers {
			if h != nil {
				h(text)
			}
		}
	}
}

// ChainErrorHandlers runs handlers in order for each error.
func ChainErrorHandlers(handlers ...ErrorHandler) ErrorHandler {
	return func(err *ChatError) {
		for _, h := range handlers {
			if h != nil {
				h(err)
			}
		}
	}
}

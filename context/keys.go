package context

import "errors"

// CTXKey - a type for context keys
type CTXKey string

const (
	// EnvironmentCTXKey - the key used for the running environment
	EnvironmentCTXKey CTXKey = "environment"
	// LogLevelCTXKey - context key for the logging level
	LogLevelCTXKey CTXKey = "log_level"
	// LogWriterCTXKey - context key for overriding the log writer
	LogWriterCTXKey CTXKey = "log_writer"
	// DebugLoggingCTXKey - context key for debug logging
	DebugLoggingCTXKey CTXKey = "debug_logging"
	// EscrowServerCTXKey - the context key for getting the escrow api server
	EscrowServerCTXKey CTXKey = "escrow_server"
	// EscrowAPIKeyCTXKey - the context key for getting the escrow api key
	EscrowAPIKeyCTXKey CTXKey = "escrow_api_key"
	// EscrowAPISecretCTXKey - the context key for getting the escrow api secret
	EscrowAPISecretCTXKey CTXKey = "escrow_api_secret"
	// EscrowAccountEmailCTXKey - the context key for getting the escrow account email
	EscrowAccountEmailCTXKey CTXKey = "escrow_account_email"
	// EscrowClientCTXKey - the context key for a constructed escrow client
	EscrowClientCTXKey CTXKey = "escrow_client"
)

var (
	// ErrNotInContext - error you get when you ask for something not in the context.
	ErrNotInContext = errors.New("failed to get value from context")
	// ErrValueWrongType - error you get when you ask for something, and it is not the type you expected
	ErrValueWrongType = errors.New("context value of wrong type")
)

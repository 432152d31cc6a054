package context

import (
	"context"

	"github.com/rs/zerolog"
)

// GetStringFromContext - given a CTXKey return the string value from the context if it exists
func GetStringFromContext(ctx context.Context, key CTXKey) (string, error) {
	v := ctx.Value(key)
	if v == nil {
		return "", ErrNotInContext
	}
	s, ok := v.(string)
	if !ok {
		return "", ErrValueWrongType
	}
	return s, nil
}

// GetBoolFromContext - given a CTXKey return the bool value from the context if it exists
func GetBoolFromContext(ctx context.Context, key CTXKey) (bool, error) {
	v := ctx.Value(key)
	if v == nil {
		return false, ErrNotInContext
	}
	b, ok := v.(bool)
	if !ok {
		return false, ErrValueWrongType
	}
	return b, nil
}

// GetLogLevelFromContext - return the log level stored under key, accepting
// either a zerolog.Level or its string form. Defaults to info.
func GetLogLevelFromContext(ctx context.Context, key CTXKey) (zerolog.Level, error) {
	v := ctx.Value(key)
	if v == nil {
		return zerolog.InfoLevel, ErrNotInContext
	}
	switch t := v.(type) {
	case zerolog.Level:
		return t, nil
	case string:
		level, err := zerolog.ParseLevel(t)
		if err != nil {
			return zerolog.InfoLevel, ErrValueWrongType
		}
		return level, nil
	}
	return zerolog.InfoLevel, ErrValueWrongType
}

// GetLogger - return the logger that was associated with the context
func GetLogger(ctx context.Context) (*zerolog.Logger, error) {
	l := zerolog.Ctx(ctx)
	if l == nil || l.GetLevel() == zerolog.Disabled {
		return nil, ErrNotInContext
	}
	return l, nil
}

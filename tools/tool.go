package tools

import (
	"context"
)

// ITool is the common surface of search and scrape tools
type ITool interface {
	Title() string
	Description() string
}

// StartHook is called before a tool runs
type StartHook func(ctx context.Context, tool ITool, input any)

// EndHook is called after a tool run succeeded
type EndHook func(ctx context.Context, tool ITool, input any, output any)

// ErrorHook is called after a tool run failed
type ErrorHook func(ctx context.Context, tool ITool, input any, err error)

package tools

import "context"

// Config is embedded by every tool
type Config struct {
	// title the default title of the tool
	title string
	// description the default description of the tool
	description string
	startHook   StartHook
	endHook     EndHook
	errorHook   ErrorHook
}

func (c *Config) SetTitle(v string) {
	c.title = v
}

func (c Config) Title() string {
	return c.title
}

func (c *Config) SetDescription(v string) {
	c.description = v
}

func (c Config) Description() string {
	return c.description
}

func (c *Config) SetStartHook(fn StartHook) {
	c.startHook = fn
}

func (c *Config) SetEndHook(fn EndHook) {
	c.endHook = fn
}

func (c *Config) SetErrorHook(fn ErrorHook) {
	c.errorHook = fn
}

// OnStart runs the start hook if set
func (c Config) OnStart(ctx context.Context, tool ITool, input any) {
	if fn := c.startHook; fn != nil {
		fn(ctx, tool, input)
	}
}

// OnEnd runs the end hook if set
func (c Config) OnEnd(ctx context.Context, tool ITool, input any, output any) {
	if fn := c.endHook; fn != nil {
		fn(ctx, tool, input, output)
	}
}

// OnError runs the error hook if set and returns err
func (c Config) OnError(ctx context.Context, tool ITool, input any, err error) error {
	if fn := c.errorHook; fn != nil {
		fn(ctx, tool, input, err)
	}
	return err
}

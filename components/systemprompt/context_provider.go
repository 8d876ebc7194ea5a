package systemprompt

// ContextProvider is an interface that defines the title and info of a context provider
type ContextProvider interface {
	Title() string
	Info() string
}

// ProviderFunc is a ContextProvider whose info is computed on every Generate call
type ProviderFunc struct {
	title string
	fn    func() string
}

var _ ContextProvider = (*ProviderFunc)(nil)

// NewProviderFunc returns a ContextProvider backed by fn
func NewProviderFunc(title string, fn func() string) *ProviderFunc {
	return &ProviderFunc{title: title, fn: fn}
}

func (p *ProviderFunc) Title() string {
	return p.title
}

func (p *ProviderFunc) Info() string {
	if p.fn == nil {
		return ""
	}
	return p.fn()
}

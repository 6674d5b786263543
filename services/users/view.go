package users

// View renders Admin state. The shell implements it for the terminal;
// tests record calls.
type View interface {
	SetTab(tab Tab, title string)
	RenderUsers(users []User)
	RenderSelects(options []SelectOption)
	RenderUpdateForm(selected int64, form UserForm)
	ResetCreateForm()
	// RenderDetails shows a user, or placeholder when details is nil
	RenderDetails(details *UserDetails, placeholder string)
	RenderDocs(baseURL string, endpoints []Endpoint)
	// ShowNotification shows n, or clears the notification area when n is nil
	ShowNotification(n *Notification)
	SetLoading(active bool)
}

// Confirmer is the blocking yes/no prompt shown before a delete
type Confirmer interface {
	Confirm(prompt string) bool
}

type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// NopView discards all rendering
type NopView struct{}

func (NopView) SetTab(Tab, string)                 {}
func (NopView) RenderUsers([]User)                 {}
func (NopView) RenderSelects([]SelectOption)       {}
func (NopView) RenderUpdateForm(int64, UserForm)   {}
func (NopView) ResetCreateForm()                   {}
func (NopView) RenderDetails(*UserDetails, string) {}
func (NopView) RenderDocs(string, []Endpoint)      {}
func (NopView) ShowNotification(*Notification)     {}
func (NopView) SetLoading(bool)                    {}

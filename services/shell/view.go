package shell

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"text/tabwriter"

	"useradmin/services/users"
)

// TerminalView renders Admin state as plain text. Notifications may arrive
// from timer goroutines, so every write holds mu.
type TerminalView struct {
	mu      sync.Mutex
	out     io.Writer
	tab     users.Tab
	options []users.SelectOption
	docsURL string
	docs    []users.Endpoint
}

func NewTerminalView(out io.Writer) *TerminalView {
	return &TerminalView{out: out}
}

func (v *TerminalView) SetTab(tab users.Tab, title string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.tab = tab
	fmt.Fprintf(v.out, "\n== %s ==\n", title)

	switch tab {
	case users.TabDocs:
		v.writeDocs()
	case users.TabCreate:
		fmt.Fprintln(v.out, "Type `create` to add a user.")
	}
}

func (v *TerminalView) RenderUsers(list []users.User) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.tab != users.TabList {
		return
	}
	if len(list) == 0 {
		fmt.Fprintln(v.out, "No users found")
		return
	}

	tw := tabwriter.NewWriter(v.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUSERNAME\tEMAIL\tFULL NAME\tROLE\tCREATED")
	for _, u := range list {
		fullName := u.FullName
		if fullName == "" {
			fullName = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			u.ID, u.Username, u.Email, fullName, u.Role, users.FormatListDate(u.CreatedAt))
	}
	tw.Flush()
}

func (v *TerminalView) RenderSelects(options []users.SelectOption) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.options = options
	if v.tab != users.TabUpdate && v.tab != users.TabDetails {
		return
	}
	if len(options) == 0 {
		fmt.Fprintln(v.out, "No users loaded. Open the list tab first.")
		return
	}
	for _, o := range options {
		fmt.Fprintf(v.out, "  [%d] %s\n", o.Value, o.Label)
	}
}

func (v *TerminalView) RenderUpdateForm(selected int64, form users.UserForm) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if selected == 0 {
		fmt.Fprintln(v.out, "No user selected")
		return
	}

	tw := tabwriter.NewWriter(v.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Selected\t#%d\n", selected)
	fmt.Fprintf(tw, "Username\t%s\n", form.Username)
	fmt.Fprintf(tw, "Email\t%s\n", form.Email)
	fmt.Fprintf(tw, "Full Name\t%s\n", form.FullName)
	fmt.Fprintf(tw, "Role\t%s\n", form.Role)
	tw.Flush()
}

func (v *TerminalView) ResetCreateForm() {}

func (v *TerminalView) RenderDetails(d *users.UserDetails, placeholder string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if d == nil {
		fmt.Fprintln(v.out, placeholder)
		return
	}

	tw := tabwriter.NewWriter(v.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\t%d\n", d.ID)
	fmt.Fprintf(tw, "Username\t%s\n", d.Username)
	fmt.Fprintf(tw, "Email\t%s\n", d.Email)
	fmt.Fprintf(tw, "Full Name\t%s\n", d.FullName)
	fmt.Fprintf(tw, "Role\t%s\n", d.Role)
	fmt.Fprintf(tw, "Password Hash\t%s\n", d.PasswordHash)
	fmt.Fprintf(tw, "Created\t%s\n", d.CreatedAt)
	fmt.Fprintf(tw, "Updated\t%s\n", d.UpdatedAt)
	tw.Flush()
}

func (v *TerminalView) RenderDocs(baseURL string, endpoints []users.Endpoint) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.docsURL = baseURL
	v.docs = endpoints
	if v.tab == users.TabDocs {
		v.writeDocs()
	}
}

func (v *TerminalView) writeDocs() {
	fmt.Fprintf(v.out, "Base URL: %s\n", v.docsURL)

	tw := tabwriter.NewWriter(v.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "METHOD\tENDPOINT\tDESCRIPTION\tAUTH")
	for _, e := range v.docs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Method, e.Path, e.Description, e.Authentication)
	}
	tw.Flush()
}

func (v *TerminalView) ShowNotification(n *users.Notification) {
	if n == nil {
		return
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintf(v.out, "[%s] %s\n", strings.ToUpper(string(n.Kind)), n.Message)
}

func (v *TerminalView) SetLoading(active bool) {
	if !active {
		return
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintln(v.out, "Loading...")
}

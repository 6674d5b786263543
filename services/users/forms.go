package users

import (
	"context"

	"useradmin/apperrors"
)

// SubmitCreate handles the add-user form. On success the form is cleared
// and the list tab is opened.
func (a *Admin) SubmitCreate(ctx context.Context, form UserForm) (*User, error) {
	created, err := a.CreateUser(ctx, form.CreateRequest())
	if err != nil {
		return nil, err
	}

	a.view.ResetCreateForm()
	_ = a.nav.Switch(ctx, TabList)
	return created, nil
}

// SelectForUpdate picks a cached user in the update tab and pre-fills the
// form from it. id 0 clears the selection.
func (a *Admin) SelectForUpdate(id int64) error {
	if id == 0 {
		a.setSelected(0)
		a.view.RenderUpdateForm(0, UserForm{})
		return nil
	}

	u, ok := a.cache.Get(id)
	if !ok {
		err := apperrors.NewUserNotFound(id)
		a.notifier.Error(err.Message)
		return err
	}

	a.setSelected(id)
	a.view.RenderUpdateForm(id, FormFromUser(u))
	return nil
}

// Selected returns the user picked in the update tab, 0 when none
func (a *Admin) Selected() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.selected
}

func (a *Admin) setSelected(id int64) {
	a.mu.Lock()
	a.selected = id
	a.mu.Unlock()
}

// SubmitUpdate handles the update form for the selected user. Blank
// fields are left unchanged on the server.
func (a *Admin) SubmitUpdate(ctx context.Context, form UserForm) (*User, error) {
	id := a.Selected()
	if id == 0 {
		err := apperrors.NewValidationError(msgSelectToUpdate).WithOperation("update_user")
		a.notifier.Error(err.Message)
		return nil, err
	}

	updated, err := a.UpdateUser(ctx, id, form.UpdateRequest())
	if err != nil {
		return nil, err
	}

	// Re-fill from the refreshed cache entry
	if _, ok := a.cache.Get(id); ok {
		_ = a.SelectForUpdate(id)
	} else {
		a.view.RenderUpdateForm(id, FormFromUser(*updated))
	}
	return updated, nil
}

// EditUser jumps from the list to the update tab with id selected
func (a *Admin) EditUser(ctx context.Context, id int64) error {
	if _, ok := a.cache.Get(id); !ok {
		err := apperrors.NewUserNotFound(id)
		a.notifier.Error(err.Message)
		return err
	}
	if err := a.nav.Switch(ctx, TabUpdate); err != nil {
		return err
	}
	return a.SelectForUpdate(id)
}

// ShowDetails loads id from the server into the details tab
func (a *Admin) ShowDetails(ctx context.Context, id int64) error {
	if id <= 0 {
		a.view.RenderDetails(nil, msgSelectToView)
		return nil
	}

	u, err := a.GetUserByID(ctx, id)
	if err != nil {
		a.view.RenderDetails(nil, msgDetailsFailed)
		return err
	}

	details := NewUserDetails(*u)
	a.view.RenderDetails(&details, "")
	return nil
}

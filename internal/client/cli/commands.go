package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gatekeeper/internal/client/client"
	"github.com/dmitrijs2005/gatekeeper/internal/common"
)

func (a *App) Register(ctx context.Context) error {

	name, err := getSimpleText(a.reader, "Enter name", a.out)
	if err != nil {
		return err
	}

	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	res, err := a.api.Register(ctx, name, email, password)
	if err != nil {
		return describe(err)
	}

	if err := a.tokens.Save(res.Token); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s (id %d)\n", res.Message, res.User.ID)
	return nil
}

func (a *App) Login(ctx context.Context) error {

	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	res, err := a.api.Login(ctx, email, password)
	if err != nil {
		return describe(err)
	}

	if err := a.tokens.Save(res.Token); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s, welcome %s\n", res.Message, res.User.Name)
	return nil
}

func (a *App) Profile(ctx context.Context) error {

	token, err := a.tokens.Load()
	if err != nil {
		return err
	}

	u, err := a.api.Profile(ctx, token)
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			return fmt.Errorf("session expired or invalid, please login again: %w", err)
		}
		return describe(err)
	}

	fmt.Fprintf(a.out, "id:      %d\nname:    %s\nemail:   %s\ncreated: %s\n",
		u.ID, u.Name, u.Email, u.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	return nil
}

func (a *App) Health(ctx context.Context) error {
	h, err := a.api.Health(ctx)
	if err != nil {
		return describe(err)
	}
	fmt.Fprintf(a.out, "%s (%s)\n", h.Message, h.Timestamp)
	return nil
}

func (a *App) Logout() error {
	if err := a.tokens.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

// describe prefers the server's own message over the wrapped chain.
func describe(err error) error {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return errors.New(apiErr.Message)
	}
	return err
}

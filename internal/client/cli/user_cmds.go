package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/adminkit/adminctl/internal/apperr"
	"github.com/adminkit/adminctl/internal/client/models"
)

// parseListArgs turns "key=value" tokens into ListParams. Unknown keys are
// rejected so typos do not silently fall through as no-ops.
func parseListArgs(args []string) (models.ListParams, error) {
	var p models.ListParams
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			return p, apperr.New(apperr.CodeInvalidInput, fmt.Sprintf("expected key=value, got %q", arg))
		}
		switch key {
		case "page":
			n, err := strconv.Atoi(value)
			if err != nil {
				return p, apperr.New(apperr.CodeInvalidInput, "page must be a number")
			}
			p.Page = n
		case "limit":
			n, err := strconv.Atoi(value)
			if err != nil {
				return p, apperr.New(apperr.CodeInvalidInput, "limit must be a number")
			}
			p.Limit = n
		case "sort":
			p.Sort = value
		case "order":
			p.Order = value
		case "q":
			p.Search = value
		case "role":
			p.Role = value
		case "status":
			p.Status = value
		default:
			return p, apperr.New(apperr.CodeInvalidInput, fmt.Sprintf("unknown filter %q", key))
		}
	}
	return p, nil
}

// parseID parses the single positional id argument of user commands.
func parseID(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, apperr.New(apperr.CodeInvalidInput, "expected exactly one user id")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, apperr.New(apperr.CodeInvalidID, "Invalid user ID")
	}
	return id, nil
}

// ListUsers fetches and prints one page of users.
func (a *App) ListUsers(ctx context.Context, args []string) error {
	params, err := parseListArgs(args)
	if err != nil {
		return err
	}

	page, err := a.users.List(ctx, params)
	if err != nil {
		return err
	}

	printlnFn(fmt.Sprintf("%-6s %-20s %-30s %-10s %s", "ID", "NAME", "EMAIL", "ROLE", "STATUS"))
	for _, u := range page.Data {
		printlnFn(fmt.Sprintf("%-6d %-20s %-30s %-10s %s", u.ID, u.Name, u.Email, u.Role, u.Status))
	}
	printlnFn(fmt.Sprintf("page %d/%d, %d total", page.Page, page.TotalPages, page.Total))
	return nil
}

// ShowUser prints one user by id.
func (a *App) ShowUser(ctx context.Context, args []string) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}
	u, err := a.users.Get(ctx, id)
	if err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("id=%d name=%s email=%s role=%s status=%s", u.ID, u.Name, u.Email, u.Role, u.Status))
	return nil
}

// AddUser interactively collects a new user and creates it.
func (a *App) AddUser(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter name", os.Stdout)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	role, err := getSimpleText(a.reader, "Enter role (admin/user/moderator)", os.Stdout)
	if err != nil {
		return err
	}
	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}

	u, err := a.users.Create(ctx, models.UserCreate{Name: name, Email: email, Role: role, Password: password})
	if err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Created user %d (%s)", u.ID, u.Email))
	return nil
}

// EditUser interactively updates the user with the given id. Empty answers
// leave the corresponding field unchanged.
func (a *App) EditUser(ctx context.Context, args []string) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}

	name, err := getSimpleText(a.reader, "New name (empty to keep)", os.Stdout)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "New email (empty to keep)", os.Stdout)
	if err != nil {
		return err
	}
	role, err := getSimpleText(a.reader, "New role (empty to keep)", os.Stdout)
	if err != nil {
		return err
	}
	status, err := getSimpleText(a.reader, "New status (empty to keep)", os.Stdout)
	if err != nil {
		return err
	}

	u, err := a.users.Update(ctx, id, models.UserUpdate{Name: name, Email: email, Role: role, Status: status})
	if err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Updated user %d", u.ID))
	return nil
}

// Dashboard prints a short summary of the user base: the overall count and
// the split between active and inactive accounts.
func (a *App) Dashboard(ctx context.Context) error {
	counts := make(map[string]int, 3)
	for _, status := range []string{"", "active", "inactive"} {
		page, err := a.users.List(ctx, models.ListParams{Status: status, Limit: 1})
		if err != nil {
			return err
		}
		counts[status] = page.Total
	}
	printlnFn(fmt.Sprintf("users: %d total, %d active, %d inactive",
		counts[""], counts["active"], counts["inactive"]))
	return nil
}

// RemoveUser deletes the user with the given id.
func (a *App) RemoveUser(ctx context.Context, args []string) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}
	if err := a.users.Delete(ctx, id); err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Deleted user %d", id))
	return nil
}

package cli

import "context"

// commandSet is the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a stub.
type commandSet interface {
	loggedIn() bool

	Login(ctx context.Context) error
	Register(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	ListUsers(ctx context.Context, args []string) error
	ShowUser(ctx context.Context, args []string) error
	AddUser(ctx context.Context) error
	EditUser(ctx context.Context, args []string) error
	RemoveUser(ctx context.Context, args []string) error
	Upload(ctx context.Context, args []string) error
	Dashboard(ctx context.Context) error
}

// route is one entry of the static command table. Protected routes are only
// dispatched when the route guard allows it.
type route struct {
	name      string
	aliases   []string
	help      string
	protected bool
	run       func(ctx context.Context, a commandSet, args []string) error
}

// routes is the declarative command table consumed by the REPL.
var routes = []route{
	{
		name: "login", help: "authenticate against the backend",
		run: func(ctx context.Context, a commandSet, _ []string) error { return a.Login(ctx) },
	},
	{
		name: "register", help: "create a new account",
		run: func(ctx context.Context, a commandSet, _ []string) error { return a.Register(ctx) },
	},
	{
		name: "whoami", help: "show the signed-in user", protected: true,
		run: func(ctx context.Context, a commandSet, _ []string) error { return a.WhoAmI(ctx) },
	},
	{
		name: "users", aliases: []string{"u"}, protected: true,
		help: "list users; filters: page=N limit=N sort=F order=asc|desc q=TEXT role=R status=S",
		run:  func(ctx context.Context, a commandSet, args []string) error { return a.ListUsers(ctx, args) },
	},
	{
		name: "user", help: "show one user by id", protected: true,
		run: func(ctx context.Context, a commandSet, args []string) error { return a.ShowUser(ctx, args) },
	},
	{
		name: "adduser", help: "create a user (interactive)", protected: true,
		run: func(ctx context.Context, a commandSet, _ []string) error { return a.AddUser(ctx) },
	},
	{
		name: "edituser", help: "update a user by id (interactive)", protected: true,
		run: func(ctx context.Context, a commandSet, args []string) error { return a.EditUser(ctx, args) },
	},
	{
		name: "deluser", help: "delete a user by id", protected: true,
		run: func(ctx context.Context, a commandSet, args []string) error { return a.RemoveUser(ctx, args) },
	},
	{
		name: "status", help: "show a summary of the user base", protected: true,
		run: func(ctx context.Context, a commandSet, _ []string) error { return a.Dashboard(ctx) },
	},
	{
		name: "upload", help: "upload a document file", protected: true,
		run: func(ctx context.Context, a commandSet, args []string) error { return a.Upload(ctx, args) },
	},
	{
		name: "logout", help: "sign out and clear the session", protected: true,
		run: func(ctx context.Context, a commandSet, _ []string) error { return a.Logout(ctx) },
	},
}

// findRoute resolves a command word to its route, honoring aliases.
func findRoute(name string) (route, bool) {
	for _, r := range routes {
		if r.name == name {
			return r, true
		}
		for _, alias := range r.aliases {
			if alias == name {
				return r, true
			}
		}
	}
	return route{}, false
}

// Package cli is the interactive shell of the admin console. It wires the
// auth gateway, the user resource client and the upload collaborator behind
// a static route table, and guards protected routes on the session state.
package cli

// Command chef is a terminal client for the recipe API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pageza/masterchef/backend/internal/pantry"
	"github.com/pageza/masterchef/backend/pkg/client"
)

const usage = `usage: chef [-server URL] [-session FILE] <command> [args]

commands:
  signup EMAIL PASSWORD     create an account and sign in
  signin EMAIL PASSWORD     sign in
  signout                   sign out
  refresh                   renew the session token
  whoami                    show the signed-in user
  generate [-save] ING...   suggest a recipe from at least 5 ingredients
  list [QUERY]              list saved recipes, newest first
  show ID                   print a saved recipe
  favorite ID               toggle the favorite flag
  notes ID TEXT             replace the notes ("" clears them)
  delete ID                 delete a saved recipe
  export ID                 print a download link for a saved recipe
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "chef:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("chef", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.Usage = func() { fmt.Fprint(out, usage) }
	server := fs.String("server", envOr("CHEF_SERVER", "http://localhost:3001"), "API base URL")
	sessionPath := fs.String("session", envOr("CHEF_SESSION", defaultSessionPath()), "session file")
	timeout := fs.Duration("timeout", 45*time.Second, "request timeout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errors.New("missing command")
	}

	sessions, err := client.LoadSessionStore(*sessionPath)
	if err != nil {
		return err
	}
	c := client.New(*server, client.WithSessionStore(sessions))
	cmd := &commands{client: c, book: client.NewRecipeBook(c), out: out}

	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	name, rest := fs.Arg(0), fs.Args()[1:]
	switch name {
	case "signup", "signin":
		return cmd.authenticate(ctx, name, rest)
	case "signout":
		return cmd.signOut(ctx)
	case "refresh":
		return cmd.refresh(ctx)
	case "whoami":
		return cmd.whoami()
	case "generate":
		return cmd.generate(ctx, rest)
	case "list":
		return cmd.list(ctx, strings.Join(rest, " "))
	case "show":
		return cmd.withID(rest, func(id uuid.UUID) error { return cmd.show(ctx, id) })
	case "favorite":
		return cmd.withID(rest, func(id uuid.UUID) error { return cmd.favorite(ctx, id) })
	case "notes":
		if len(rest) < 2 {
			return errors.New("usage: chef notes ID TEXT")
		}
		return cmd.withID(rest[:1], func(id uuid.UUID) error { return cmd.notes(ctx, id, strings.Join(rest[1:], " ")) })
	case "delete":
		return cmd.withID(rest, func(id uuid.UUID) error { return cmd.delete(ctx, id) })
	case "export":
		return cmd.withID(rest, func(id uuid.UUID) error { return cmd.export(ctx, id) })
	default:
		fs.Usage()
		return fmt.Errorf("unknown command %q", name)
	}
}

type commands struct {
	client *client.Client
	book   *client.RecipeBook
	out    io.Writer
}

func (c *commands) authenticate(ctx context.Context, name string, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: chef %s EMAIL PASSWORD", name)
	}
	signIn := c.client.SignIn
	if name == "signup" {
		signIn = c.client.SignUp
	}
	identity, err := signIn(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Signed in as %s (%s)\n", identity.Username, identity.Email)
	return nil
}

func (c *commands) signOut(ctx context.Context) error {
	if err := c.client.SignOut(ctx); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Signed out")
	return nil
}

func (c *commands) refresh(ctx context.Context) error {
	identity, err := c.client.Refresh(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Session renewed for %s\n", identity.Username)
	return nil
}

func (c *commands) whoami() error {
	identity := c.client.Sessions().Identity()
	if identity == nil {
		fmt.Fprintln(c.out, "Not signed in")
		return nil
	}
	fmt.Fprintf(c.out, "%s (%s)\n", identity.Username, identity.Email)
	return nil
}

func (c *commands) generate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	fs.SetOutput(c.out)
	save := fs.Bool("save", false, "save the recipe when signed in")
	if err := fs.Parse(args); err != nil {
		return err
	}

	list := pantry.NewList()
	for _, arg := range fs.Args() {
		for _, raw := range strings.Split(arg, ",") {
			if strings.TrimSpace(raw) == "" {
				continue
			}
			if err := list.Add(raw); err != nil {
				fmt.Fprintf(c.out, "skipping: %v\n", err)
			}
		}
	}

	fmt.Fprintf(c.out, "Ingredients %s [%d%%]\n", list.Status(), list.Progress())
	if !list.Ready() {
		return fmt.Errorf("add at least %d ingredients to generate a recipe", pantry.MinIngredients)
	}

	recipe, err := c.client.GenerateRecipe(ctx, list.Items(), nil)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, recipe)

	if !*save {
		return nil
	}
	if c.client.Sessions().Identity() == nil {
		return errors.New("sign in to save recipes")
	}
	saved, err := c.book.Save(ctx, recipe, list.Items())
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "\nSaved %q as %s\n", saved.Title, saved.ID)
	return nil
}

func (c *commands) list(ctx context.Context, query string) error {
	if err := c.book.Refresh(ctx); err != nil {
		return err
	}
	recipes := c.book.Search(query)
	if len(recipes) == 0 {
		fmt.Fprintln(c.out, "No saved recipes")
		return nil
	}
	for _, r := range recipes {
		star := " "
		if r.IsFavorite {
			star = "*"
		}
		fmt.Fprintf(c.out, "%s %s  %s  %s\n", star, r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04"), r.Title)
	}
	return nil
}

func (c *commands) show(ctx context.Context, id uuid.UUID) error {
	recipe, err := c.client.GetRecipe(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, recipe.Content)
	if recipe.Notes != "" {
		fmt.Fprintf(c.out, "\nNotes: %s\n", recipe.Notes)
	}
	return nil
}

func (c *commands) favorite(ctx context.Context, id uuid.UUID) error {
	if err := c.book.Refresh(ctx); err != nil {
		return err
	}
	value, err := c.book.ToggleFavorite(ctx, id)
	if err != nil {
		return err
	}
	if value {
		fmt.Fprintln(c.out, "Added to favorites")
	} else {
		fmt.Fprintln(c.out, "Removed from favorites")
	}
	return nil
}

func (c *commands) notes(ctx context.Context, id uuid.UUID, text string) error {
	if err := c.book.SetNotes(ctx, id, text); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Notes saved")
	return nil
}

func (c *commands) delete(ctx context.Context, id uuid.UUID) error {
	if err := c.book.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Deleted")
	return nil
}

func (c *commands) export(ctx context.Context, id uuid.UUID) error {
	export, err := c.client.ExportRecipe(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%s\n(expires %s)\n", export.URL, export.ExpiresAt.Local().Format(time.RFC1123))
	return nil
}

func (c *commands) withID(args []string, fn func(uuid.UUID) error) error {
	if len(args) != 1 {
		return errors.New("expected a recipe ID")
	}
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid recipe ID %q", args[0])
	}
	return fn(id)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".chef-session.json"
	}
	return filepath.Join(dir, "chef", "session.json")
}

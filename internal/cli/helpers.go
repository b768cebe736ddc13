package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/rolodex/internal/jsonl"
	"github.com/mesh-intelligence/rolodex/internal/seed"
	"github.com/mesh-intelligence/rolodex/pkg/query"
	"github.com/mesh-intelligence/rolodex/pkg/sqlite"
	"github.com/mesh-intelligence/rolodex/pkg/store"
	"github.com/mesh-intelligence/rolodex/pkg/types"
)

// backendFor builds backends for sessions. Tests replace it.
var backendFor = newBackend

// newBackend returns a detached backend for the configured name.
func newBackend(name string) (types.Backend, error) {
	switch name {
	case types.BackendSQLite:
		return sqlite.NewBackend(), nil
	case types.BackendJSONL:
		return jsonl.NewBackend(), nil
	case types.BackendMemory:
		return seed.NewMemory(seed.Demo()), nil
	default:
		return nil, fmt.Errorf("backend %q: %w (valid: %s, %s, %s)",
			name, types.ErrBackendUnknown, types.BackendSQLite, types.BackendJSONL, types.BackendMemory)
	}
}

// session is an initialized store wired to an attached backend.
type session struct {
	store    *store.Store
	backend  types.Backend
	autosave *store.Autosaver
	dataDir  string
}

// open attaches the configured backend, loads the store from it and
// starts autosaving. The caller must call close.
func (a *app) open(ctx context.Context) (*session, error) {
	dataDir, err := a.resolveDataDir()
	if err != nil {
		return nil, sysError(fmt.Errorf("resolve data dir: %w", err))
	}
	cfg := storageConfig(a.cfg, dataDir)
	if err := cfg.Validate(); err != nil {
		return nil, sysError(fmt.Errorf("config: %w", err))
	}

	backend, err := backendFor(cfg.Backend)
	if err != nil {
		return nil, sysError(err)
	}
	if err := backend.Attach(cfg); err != nil {
		return nil, sysError(fmt.Errorf("attach backend: %w", err))
	}

	s := store.New(
		store.WithDataSource(backend),
		store.WithLogger(logrus.StandardLogger().WithField("type", "store")),
	)
	if err := s.Initialize(ctx); err != nil {
		return nil, sysError(errors.Join(err, s.Close(), backend.Detach()))
	}
	saver, err := store.Autosave(s, backend, cfg.Sync)
	if err != nil {
		return nil, sysError(errors.Join(err, s.Close(), backend.Detach()))
	}

	return &session{store: s, backend: backend, autosave: saver, dataDir: dataDir}, nil
}

// close flushes pending changes, closes the store and detaches the
// backend. Every step runs even if an earlier one fails.
func (s *session) close(ctx context.Context) error {
	return errors.Join(
		s.autosave.Close(ctx),
		s.store.Close(),
		s.backend.Detach(),
	)
}

// withSession runs fn against an open session and closes it afterwards.
// A failure to save is reported even when fn succeeded.
func (a *app) withSession(cmd *cobra.Command, fn func(*session) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	sess, err := a.open(ctx)
	if err != nil {
		return err
	}
	runErr := fn(sess)
	if closeErr := sess.close(ctx); closeErr != nil && runErr == nil {
		return sysError(fmt.Errorf("save contacts: %w", closeErr))
	}
	return runErr
}

// contactFlags binds the editable contact fields to command flags.
type contactFlags struct {
	first, last, phone, email                    string
	company, address, birthday, notes, avatarURI string
}

func (f *contactFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.first, "first", "", "first name")
	fs.StringVar(&f.last, "last", "", "last name")
	fs.StringVar(&f.phone, "phone", "", "phone number")
	fs.StringVar(&f.email, "email", "", "email address")
	fs.StringVar(&f.company, "company", "", "company")
	fs.StringVar(&f.address, "address", "", "postal address")
	fs.StringVar(&f.birthday, "birthday", "", "birthday")
	fs.StringVar(&f.notes, "notes", "", "free-form notes")
	fs.StringVar(&f.avatarURI, "avatar", "", "avatar image URI")
}

// draft builds a Draft from the flags the user actually set. An explicit
// empty value clears an optional field on update.
func (f *contactFlags) draft(cmd *cobra.Command) (types.Draft, bool) {
	var (
		d   types.Draft
		set bool
	)
	bind := func(name string, value string, dst **string) {
		if cmd.Flags().Changed(name) {
			*dst = types.Ptr(value)
			set = true
		}
	}
	bind("first", f.first, &d.FirstName)
	bind("last", f.last, &d.LastName)
	bind("phone", f.phone, &d.Phone)
	bind("email", f.email, &d.Email)
	bind("company", f.company, &d.Company)
	bind("address", f.address, &d.Address)
	bind("birthday", f.birthday, &d.Birthday)
	bind("notes", f.notes, &d.Notes)
	bind("avatar", f.avatarURI, &d.Avatar)
	return d, set
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return sysError(fmt.Errorf("marshal JSON: %w", err))
	}
	fmt.Fprintln(w, string(out))
	return nil
}

// printContactTable writes contacts as an aligned table.
func printContactTable(w io.Writer, contacts []types.Contact) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPHONE\tEMAIL\tFAV")
	fmt.Fprintln(tw, "--\t----\t-----\t-----\t---")
	for _, c := range contacts {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", c.ID, c.FullName(), c.Phone, c.Email, favoriteMark(c))
	}
	tw.Flush()
}

// printSections writes grouped contacts under their letter headings.
func printSections(w io.Writer, sections []query.Section) {
	for i, sec := range sections {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s\n", sec.Key)
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, c := range sec.Contacts {
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", c.FullName(), c.Phone, favoriteMark(c))
		}
		tw.Flush()
	}
}

// printContact writes every present field of c.
func printContact(w io.Writer, c types.Contact) {
	fmt.Fprintf(w, "ID:        %s\n", c.ID)
	fmt.Fprintf(w, "Name:      %s (%s)\n", c.FullName(), c.Initials())
	field := func(label, value string) {
		if value != "" {
			fmt.Fprintf(w, "%-11s%s\n", label+":", value)
		}
	}
	field("Phone", c.Phone)
	field("Email", c.Email)
	for _, opt := range []struct {
		label string
		value *string
	}{
		{"Company", c.Company},
		{"Address", c.Address},
		{"Birthday", c.Birthday},
		{"Avatar", c.Avatar},
	} {
		if opt.value != nil {
			field(opt.label, *opt.value)
		}
	}
	fmt.Fprintf(w, "Favorite:  %t\n", c.Favorite)
	if c.Notes != nil {
		fmt.Fprintln(w, "\nNotes:")
		for _, line := range strings.Split(*c.Notes, "\n") {
			fmt.Fprintf(w, "  %s\n", line)
		}
	}
}

func favoriteMark(c types.Contact) string {
	if c.Favorite {
		return "*"
	}
	return ""
}

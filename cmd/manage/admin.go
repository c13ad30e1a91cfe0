package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/autogestion/autogestion-backend/internal/model"
	"github.com/autogestion/autogestion-backend/internal/repository"
	"github.com/autogestion/autogestion-backend/internal/service"
	"github.com/autogestion/autogestion-backend/internal/validator"
	"github.com/gin-gonic/gin/binding"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newCreateAdminCommand(a *app) *cobra.Command {
	req := model.CreateStaffRequest{RoleID: model.SystemRoleAdministrator}

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create a staff account, prompting for the password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := bufio.NewReader(cmd.InOrStdin())
			out := cmd.OutOrStdout()

			var err error
			if req.Name == "" {
				if req.Name, err = prompt(in, out, "Nombre: "); err != nil {
					return err
				}
			}
			if req.Email == "" {
				if req.Email, err = prompt(in, out, "Email: "); err != nil {
					return err
				}
			}
			if req.Password, err = readPassword(in, out); err != nil {
				return err
			}

			validator.Setup()
			if err := binding.Validator.ValidateStruct(&req); err != nil {
				return fieldErrors(validator.TranslateErrors(err))
			}

			ctx := cmd.Context()
			pool, err := a.connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			auth := service.NewAuthService(a.cfg, nil)
			staff := service.NewStaffService(repository.NewStaffRepository(pool), repository.NewRoleRepository(pool), auth)

			created, err := staff.Create(ctx, req)
			if err != nil {
				return fmt.Errorf("create staff: %w", err)
			}
			fmt.Fprintf(out, "Cuenta '%s' (%s) creada con ID %d\n", created.Name, created.Email, created.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Name, "name", "", "full name")
	cmd.Flags().StringVar(&req.Email, "email", "", "login email")
	cmd.Flags().IntVar(&req.RoleID, "role", model.SystemRoleAdministrator, "role ID")

	return cmd
}

func newSyncPermissionsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sync-permissions",
		Short: "Insert missing permission codes and grant all of them to the administrator role",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pool, err := a.connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			roles := service.NewRoleService(repository.NewRoleRepository(pool))
			n, err := syncPermissions(ctx, roles)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d permisos sincronizados con el rol administrador\n", n)
			return nil
		},
	}
}

type permissionSyncer interface {
	SyncPermissions(ctx context.Context) (int, error)
}

func syncPermissions(ctx context.Context, roles permissionSyncer) (int, error) {
	n, err := roles.SyncPermissions(ctx)
	if err != nil {
		return 0, fmt.Errorf("sync permissions: %w", err)
	}
	return n, nil
}

func prompt(in *bufio.Reader, out io.Writer, label string) (string, error) {
	fmt.Fprint(out, label)
	line, err := in.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// readPassword reads without echo on a terminal and falls back to a plain
// line for piped input.
func readPassword(in *bufio.Reader, out io.Writer) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return prompt(in, out, "Contraseña: ")
	}

	fmt.Fprint(out, "Contraseña: ")
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(raw), nil
}

// fieldErrors renders validation messages in a stable order.
func fieldErrors(fields map[string]string) error {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msgs := make([]string, len(keys))
	for i, k := range keys {
		msgs[i] = fields[k]
	}
	return fmt.Errorf("invalid input: %s", strings.Join(msgs, "; "))
}

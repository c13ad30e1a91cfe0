package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/autogestion/autogestion-backend/internal/model"
	"github.com/autogestion/autogestion-backend/internal/repository"
	"github.com/autogestion/autogestion-backend/internal/service"
	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// rosterEntry is one student row of an import file.
type rosterEntry struct {
	Line   int
	Legajo string
	DNI    string
	Name   string
	Email  string
}

var rosterHeader = []string{"legajo", "dni", "nombre", "email"}

func newSeedStudentsCommand(a *app) *cobra.Command {
	var (
		careerCode string
		password   string
	)

	cmd := &cobra.Command{
		Use:   "seed-students <roster.xlsx|roster.csv>",
		Short: "Import students of one career from a roster file",
		Long: `Import students from an XLSX or CSV roster with the columns
legajo, dni, nombre, email (the header row is optional).

Every student gets the same initial password. Existing legajos are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := readRoster(args[0])
			if err != nil {
				return err
			}
			entries, problems := parseRoster(rows)
			for _, p := range problems {
				fmt.Fprintln(cmd.ErrOrStderr(), "skip:", p)
			}

			ctx := cmd.Context()
			pool, err := a.connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			career, err := repository.NewCareerRepository(pool).GetByCode(ctx, careerCode)
			if err != nil {
				return fmt.Errorf("career %q: %w", careerCode, err)
			}

			students := service.NewStudentService(repository.NewStudentRepository(pool), service.NewAuthService(a.cfg, nil))
			created, skipped, err := seedStudents(ctx, students, career.ID, password, entries)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Importados %d estudiantes en %s (%d ya existían)\n", created, career.Name, skipped)
			return nil
		},
	}

	cmd.Flags().StringVar(&careerCode, "career", "", "career code the students belong to")
	cmd.Flags().StringVar(&password, "password", "", "initial password for every student")
	_ = cmd.MarkFlagRequired("career")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

type studentCreator interface {
	Create(ctx context.Context, student *model.Student, password string) error
}

func seedStudents(ctx context.Context, students studentCreator, careerID int, password string, entries []rosterEntry) (created, skipped int, err error) {
	if len(password) < 6 {
		return 0, 0, errors.New("password must be at least 6 characters")
	}
	for _, e := range entries {
		s := &model.Student{
			Legajo:   e.Legajo,
			DNI:      e.DNI,
			Name:     e.Name,
			Email:    e.Email,
			CareerID: careerID,
		}
		switch err := students.Create(ctx, s, password); {
		case err == nil:
			created++
		case errors.Is(err, service.ErrDuplicate):
			skipped++
		default:
			return created, skipped, fmt.Errorf("line %d (%s): %w", e.Line, e.Legajo, err)
		}
	}
	return created, skipped, nil
}

func readRoster(path string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		f, err := excelize.OpenFile(path)
		if err != nil {
			return nil, fmt.Errorf("open roster: %w", err)
		}
		defer f.Close()
		return f.GetRows(f.GetSheetName(0))
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open roster: %w", err)
		}
		defer f.Close()
		return readCSV(f)
	default:
		return nil, fmt.Errorf("unsupported roster format %q", filepath.Ext(path))
	}
}

func readCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	return cr.ReadAll()
}

// parseRoster turns raw rows into entries. Rows that cannot be imported are
// reported and left out.
func parseRoster(rows [][]string) ([]rosterEntry, []error) {
	var (
		entries  []rosterEntry
		problems []error
	)
	for i, row := range rows {
		line := i + 1
		if isBlank(row) {
			continue
		}
		if i == 0 && strings.EqualFold(strings.TrimSpace(row[0]), rosterHeader[0]) {
			continue
		}
		if len(row) < 3 {
			problems = append(problems, fmt.Errorf("line %d: expected %s", line, strings.Join(rosterHeader, ", ")))
			continue
		}

		e := rosterEntry{
			Line:   line,
			Legajo: strings.TrimSpace(row[0]),
			DNI:    strings.ReplaceAll(strings.TrimSpace(row[1]), ".", ""),
			Name:   normalizeName(row[2]),
		}
		if len(row) > 3 {
			e.Email = strings.ToLower(strings.TrimSpace(row[3]))
		}
		if e.Legajo == "" || e.Name == "" {
			problems = append(problems, fmt.Errorf("line %d: legajo and nombre are required", line))
			continue
		}
		entries = append(entries, e)
	}
	return entries, problems
}

var titleCaser = cases.Title(language.Spanish)

// normalizeName collapses whitespace and title-cases "PÉREZ,  ana maría"
// into "Pérez, Ana María".
func normalizeName(raw string) string {
	return titleCaser.String(strings.ToLower(strings.Join(strings.Fields(raw), " ")))
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

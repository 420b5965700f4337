package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/vacancydb/internal/model"
)

// Controller runs the numbered query menu over a model.Querier. It reads
// choices line by line from in and writes results to out.
type Controller struct {
	queries model.Querier
	in      *bufio.Scanner
	out     io.Writer

	titleStyle   lipgloss.Style
	headingStyle lipgloss.Style
	errorStyle   lipgloss.Style
}

// New creates a Controller. Styling is bound to out, so plain text is written
// when out is not a terminal.
func New(queries model.Querier, in io.Reader, out io.Writer) *Controller {
	r := lipgloss.NewRenderer(out)
	return &Controller{
		queries:      queries,
		in:           bufio.NewScanner(in),
		out:          out,
		titleStyle:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		headingStyle: r.NewStyle().Bold(true),
		errorStyle:   r.NewStyle().Foreground(lipgloss.Color("203")),
	}
}

const menu = `Choose an action:
1. List all companies and their vacancy count
2. List all vacancies
3. Show average salary
4. List vacancies with salary higher than average
5. Search vacancies by keyword
0. Exit`

// Run shows the menu until the user picks 0 or input ends. A failing query
// ends the loop with its error.
func (c *Controller) Run(ctx context.Context) error {
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, c.titleStyle.Render("--- Job Search Database Management ---"))

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprintln(c.out)
		fmt.Fprintln(c.out, menu)
		fmt.Fprint(c.out, "\nEnter choice: ")

		line, ok := c.readLine()
		if !ok {
			fmt.Fprintln(c.out)
			fmt.Fprintln(c.out, "Goodbye!")
			return c.in.Err()
		}

		var err error
		switch strings.TrimSpace(line) {
		case "1":
			err = c.showCounts(ctx)
		case "2":
			err = c.showAll(ctx)
		case "3":
			err = c.showAverage(ctx)
		case "4":
			err = c.showAboveAverage(ctx)
		case "5":
			err = c.search(ctx)
		case "0":
			fmt.Fprintln(c.out, "Goodbye!")
			return nil
		default:
			fmt.Fprintln(c.out, c.errorStyle.Render("Invalid choice. Please try again."))
		}
		if err != nil {
			return err
		}
	}
}

func (c *Controller) readLine() (string, bool) {
	if !c.in.Scan() {
		return "", false
	}
	return strings.TrimRight(c.in.Text(), "\r"), true
}

func (c *Controller) heading(s string) {
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, c.headingStyle.Render(s))
}

func (c *Controller) showCounts(ctx context.Context) error {
	counts, err := c.queries.CountVacanciesPerEmployer(ctx)
	if err != nil {
		return err
	}
	c.heading("Companies and vacancy counts:")
	for _, row := range counts {
		fmt.Fprintf(c.out, "%s: %d vacancies\n", row.Employer, row.Count)
	}
	return nil
}

func (c *Controller) showAll(ctx context.Context) error {
	rows, err := c.queries.ListAllVacancies(ctx)
	if err != nil {
		return err
	}
	c.heading("All vacancies:")
	c.printRows(rows)
	return nil
}

func (c *Controller) showAverage(ctx context.Context) error {
	avg, err := c.queries.AverageSalary(ctx)
	if err != nil {
		return err
	}
	c.heading(fmt.Sprintf("Average salary: %.2f", avg))
	return nil
}

func (c *Controller) showAboveAverage(ctx context.Context) error {
	rows, err := c.queries.VacanciesAboveAverage(ctx)
	if err != nil {
		return err
	}
	c.heading("Vacancies with higher than average salary:")
	c.printRows(rows)
	return nil
}

func (c *Controller) search(ctx context.Context) error {
	fmt.Fprint(c.out, "Enter keyword to search: ")
	keyword, ok := c.readLine()
	if !ok {
		fmt.Fprintln(c.out)
		return c.in.Err()
	}
	rows, err := c.queries.VacanciesMatchingKeyword(ctx, keyword)
	if err != nil {
		return err
	}
	c.heading(fmt.Sprintf("Vacancies matching '%s':", keyword))
	c.printRows(rows)
	return nil
}

func (c *Controller) printRows(rows []model.VacancyRow) {
	for _, r := range rows {
		fmt.Fprintln(c.out, FormatVacancy(r))
	}
}

// FormatVacancy renders a vacancy as a single display line. A missing or zero
// lower bound prints as 0, a missing or zero upper bound as "...".
func FormatVacancy(r model.VacancyRow) string {
	from := "0"
	if r.SalaryFrom != nil && *r.SalaryFrom != 0 {
		from = strconv.Itoa(*r.SalaryFrom)
	}
	to := "..."
	if r.SalaryTo != nil && *r.SalaryTo != 0 {
		to = strconv.Itoa(*r.SalaryTo)
	}
	currency := ""
	if r.Currency != nil {
		currency = *r.Currency
	}
	return fmt.Sprintf("[%s] %s | Salary: %s-%s %s | Link: %s", r.Employer, r.Title, from, to, currency, r.URL)
}

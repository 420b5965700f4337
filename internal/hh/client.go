package hh

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/amishk599/vacancydb/internal/model"
)

const (
	defaultBaseURL   = "https://api.hh.ru"
	defaultUserAgent = "vacancydb/dev"
	defaultPerPage   = 100
	defaultTimeout   = 30 * time.Second
)

// Config configures a Client. Zero values fall back to defaults.
type Config struct {
	BaseURL    string
	UserAgent  string // hh.ru rejects requests without a descriptive agent
	PerPage    int
	HTTPClient *http.Client
}

// Client reads employers and vacancies from the hh.ru public API. Requests are
// issued one at a time, in the order the IDs are given.
type Client struct {
	baseURL    string
	userAgent  string
	perPage    int
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a Client from cfg.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	perPage := cfg.PerPage
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL:    baseURL,
		userAgent:  userAgent,
		perPage:    perPage,
		httpClient: httpClient,
		logger:     logger,
	}
}

type employerResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	AlternateURL  string `json:"alternate_url"`
	OpenVacancies int    `json:"open_vacancies"`
}

type vacanciesResponse struct {
	Items []vacancyItem `json:"items"`
	Page  int           `json:"page"`
	Pages int           `json:"pages"`
	Found int           `json:"found"`
}

type vacancyItem struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Salary       *salary `json:"salary"`
	AlternateURL string  `json:"alternate_url"`
}

type salary struct {
	From     *int    `json:"from"`
	To       *int    `json:"to"`
	Currency *string `json:"currency"`
}

// FetchEmployer retrieves a single employer profile.
func (c *Client) FetchEmployer(ctx context.Context, id string) (model.Employer, error) {
	var er employerResponse
	if err := c.getJSON(ctx, c.baseURL+"/employers/"+url.PathEscape(id), &er); err != nil {
		return model.Employer{}, fmt.Errorf("hh fetch employer %s: %w", id, err)
	}
	rawID := er.ID
	if rawID == "" {
		rawID = id
	}
	parsed, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return model.Employer{}, fmt.Errorf("hh fetch employer %s: invalid id %q: %w", id, rawID, err)
	}
	return model.Employer{
		ID:            parsed,
		Name:          er.Name,
		URL:           er.AlternateURL,
		OpenVacancies: er.OpenVacancies,
	}, nil
}

// FetchEmployers looks up every ID in order. IDs that fail for any reason are
// logged and skipped; the only error returned is ctx's.
func (c *Client) FetchEmployers(ctx context.Context, ids []string) ([]model.Employer, error) {
	employers := make([]model.Employer, 0, len(ids))
	for _, id := range ids {
		emp, err := c.FetchEmployer(ctx, id)
		if err != nil {
			if ctx.Err() != nil {
				return employers, ctx.Err()
			}
			c.logger.Warn("skipping employer", "employer_id", id, "error", err)
			continue
		}
		c.logger.Debug("fetched employer", "employer_id", emp.ID, "name", emp.Name)
		employers = append(employers, emp)
	}
	return employers, nil
}

// FetchVacancies pages through the vacancy search for one employer. A page
// that fails ends paging for that employer; vacancies already collected are
// returned. The only error returned is ctx's.
func (c *Client) FetchVacancies(ctx context.Context, employerID string) ([]model.Vacancy, error) {
	owner, err := strconv.ParseInt(employerID, 10, 64)
	if err != nil {
		c.logger.Warn("skipping vacancies for invalid employer id", "employer_id", employerID, "error", err)
		return nil, nil
	}

	var vacancies []model.Vacancy
	for page := 0; ; page++ {
		resp, err := c.fetchPage(ctx, employerID, page)
		if err != nil {
			if ctx.Err() != nil {
				return vacancies, ctx.Err()
			}
			c.logger.Warn("vacancy page failed, stopping",
				"employer_id", employerID,
				"page", page,
				"error", err,
			)
			break
		}

		for _, item := range resp.Items {
			v, err := toVacancy(item, owner)
			if err != nil {
				c.logger.Warn("skipping vacancy", "employer_id", employerID, "error", err)
				continue
			}
			vacancies = append(vacancies, v)
		}

		if resp.Pages <= page+1 {
			break
		}
	}

	c.logger.Debug("fetched vacancies", "employer_id", employerID, "count", len(vacancies))
	return vacancies, nil
}

// FetchAllVacancies concatenates FetchVacancies for each employer in order.
func (c *Client) FetchAllVacancies(ctx context.Context, employerIDs []string) ([]model.Vacancy, error) {
	var all []model.Vacancy
	for _, id := range employerIDs {
		vs, err := c.FetchVacancies(ctx, id)
		all = append(all, vs...)
		if err != nil {
			return all, err
		}
	}
	return all, nil
}

func (c *Client) fetchPage(ctx context.Context, employerID string, page int) (vacanciesResponse, error) {
	params := url.Values{}
	params.Set("employer_id", employerID)
	params.Set("per_page", strconv.Itoa(c.perPage))
	params.Set("page", strconv.Itoa(page))

	var resp vacanciesResponse
	if err := c.getJSON(ctx, c.baseURL+"/vacancies?"+params.Encode(), &resp); err != nil {
		return resp, fmt.Errorf("hh fetch vacancies (employer=%s page=%d): %w", employerID, page, err)
	}
	return resp, nil
}

func (c *Client) getJSON(ctx context.Context, reqURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &model.HTTPError{
			StatusCode: resp.StatusCode,
			URL:        reqURL,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

func toVacancy(item vacancyItem, employerID int64) (model.Vacancy, error) {
	id, err := strconv.ParseInt(item.ID, 10, 64)
	if err != nil {
		return model.Vacancy{}, fmt.Errorf("invalid vacancy id %q: %w", item.ID, err)
	}
	v := model.Vacancy{
		ID:         id,
		EmployerID: employerID,
		Title:      item.Name,
		URL:        item.AlternateURL,
	}
	if item.Salary != nil {
		v.SalaryFrom = item.Salary.From
		v.SalaryTo = item.Salary.To
		v.Currency = item.Salary.Currency
	}
	return v, nil
}

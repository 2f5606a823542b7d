// Package activenet implements the listing and availability API contracts
// against an ActiveCommunities-style reservation backend.
package activenet

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/user/facility-scraper/internal/entity"
	"github.com/user/facility-scraper/internal/repository"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:142.0) Gecko/20100101 Firefox/142.0"

// Client talks to the reservation REST API. It implements both
// repository.ListingAPI and repository.AvailabilityAPI.
type Client struct {
	http    *resty.Client
	baseURL string
	locale  string
}

// Options configures a Client.
type Options struct {
	// BaseURL is the application root, e.g.
	// "https://anc.ca.apm.activecommunities.com/activemississauga".
	BaseURL string
	Locale  string
	// Timeout applies per request.
	Timeout time.Duration
}

// NewClient creates a new API client.
func NewClient(opts Options) *Client {
	client := resty.New()
	client.SetBaseURL(opts.BaseURL)
	client.SetTimeout(opts.Timeout)
	client.SetHeader("User-Agent", userAgent)
	client.SetHeader("Accept", "*/*")
	client.SetHeader("Accept-Language", "en-CA,en-US;q=0.7,en;q=0.3")
	client.SetHeader("X-Requested-With", "XMLHttpRequest")

	return &Client{
		http:    client,
		baseURL: opts.BaseURL,
		locale:  opts.Locale,
	}
}

// listingItem is the subset of upstream listing fields that survives
// ingestion; everything else is dropped here.
type listingItem struct {
	ID                int64  `json:"id"`
	Name              string `json:"name"`
	TypeName          string `json:"type_name"`
	TypeID            int64  `json:"type_id"`
	SiteID            int64  `json:"site_id"`
	CenterID          int64  `json:"center_id"`
	CenterName        string `json:"center_name"`
	MaxCapacity       *int   `json:"max_capacity"`
	NoInternetPermits bool   `json:"no_internet_permits"`
}

type listingEnvelope struct {
	Body struct {
		Items []listingItem `json:"items"`
		Total int           `json:"total"`
	} `json:"body"`
}

// FetchPage requests one page of the facility listing. The page selection
// travels in the page_info header, not the body; the body is an empty JSON
// object.
func (c *Client) FetchPage(ctx context.Context, page, perPage int) (*repository.ListingPage, error) {
	pageInfo, err := json.Marshal(map[string]int{
		"page_number":            page,
		"total_records_per_page": perPage,
	})
	if err != nil {
		return nil, err
	}

	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("locale", c.locale).
		SetHeader("page_info", string(pageInfo)).
		SetHeader("Content-Type", "application/json;charset=utf-8").
		SetHeader("Referer", c.baseURL+"/reservation/landing/search").
		SetBody(json.RawMessage(`{}`)).
		Post("/rest/reservation/resource")
	if err != nil {
		return nil, fmt.Errorf("%w: listing page %d: %v", repository.ErrTransport, page, err)
	}
	if res.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%w: listing page %d returned %d", repository.ErrBadStatus, page, res.StatusCode())
	}

	var envelope listingEnvelope
	if err := json.Unmarshal(res.Body(), &envelope); err != nil {
		return nil, fmt.Errorf("%w: listing page %d: %v", repository.ErrMalformedResponse, page, err)
	}

	items := make([]entity.Facility, 0, len(envelope.Body.Items))
	for _, it := range envelope.Body.Items {
		items = append(items, entity.Facility{
			ID:          it.ID,
			Name:        it.Name,
			TypeName:    it.TypeName,
			TypeID:      it.TypeID,
			SiteID:      it.SiteID,
			MaxCapacity: it.MaxCapacity,
			Bookable:    !it.NoInternetPermits,
			CenterID:    it.CenterID,
			CenterName:  it.CenterName,
		})
	}
	return &repository.ListingPage{Items: items, Total: envelope.Body.Total}, nil
}

// FetchDaily retrieves the raw daily availability document for one facility.
// ui_random is a fresh millisecond timestamp the upstream requires to defeat
// caching; the session cookies are attached read-only.
func (c *Client) FetchDaily(ctx context.Context, facilityID int64, session entity.Session, window entity.DateWindow) ([]byte, error) {
	req := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"start_date":  window.Start.Format("2006-01-02"),
			"end_date":    window.End.Format("2006-01-02"),
			"customer_id": "0",
			"company_id":  "0",
			"locale":      c.locale,
			"ui_random":   strconv.FormatInt(time.Now().UnixMilli(), 10),
		}).
		SetHeader("Referer", fmt.Sprintf("%s/reservation/landing/search/detail/%d", c.baseURL, facilityID))
	for name, value := range session.Cookies {
		req.SetCookie(&http.Cookie{Name: name, Value: value})
	}

	res, err := req.Get(fmt.Sprintf("/rest/reservation/resource/availability/daily/%d", facilityID))
	if err != nil {
		return nil, fmt.Errorf("%w: facility %d: %v", repository.ErrTransport, facilityID, err)
	}
	if res.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%w: facility %d returned %d", repository.ErrBadStatus, facilityID, res.StatusCode())
	}

	body := res.Body()
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: facility %d returned a non-JSON body", repository.ErrMalformedResponse, facilityID)
	}
	return body, nil
}

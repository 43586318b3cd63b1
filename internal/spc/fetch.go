package spc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/jschlyter/spc2mqtt/internal/log"
	"github.com/tidwall/gjson"
)

// ErrCommandFailed is returned when the gateway rejects a control request.
var ErrCommandFailed = errors.New("command rejected by gateway")

// fetcher talks to the REST side of the gateway. Reads report presence with
// a bool instead of an error: a failed or malformed response is the same as
// the resource not being there this cycle, and the details go to the log.
type fetcher struct {
	api      *url.URL
	client   *http.Client
	username string
	password string
	log      *log.Logger
}

func newFetcher(apiURL string, client *http.Client, username, password string, logger *log.Logger) (*fetcher, error) {
	u, err := url.Parse(apiURL)
	if err != nil {
		return nil, fmt.Errorf("invalid api url %q: %v", apiURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid api url %q: scheme must be http or https", apiURL)
	}
	return &fetcher{
		api:      u,
		client:   client,
		username: username,
		password: password,
		log:      logger,
	}, nil
}

// all fetches every record of a resource kind. A single object under the
// resource key is returned as a one-element slice.
func (f *fetcher) all(ctx context.Context, res Resource) ([]gjson.Result, bool) {
	data, ok := f.get(ctx, "spc", string(res))
	if !ok {
		return nil, false
	}
	records := data.Get(string(res))
	if !records.Exists() {
		f.log.Warning("Response for %s is missing the %q key", res, string(res))
		return nil, false
	}
	if records.IsArray() {
		return records.Array(), true
	}
	return []gjson.Result{records}, true
}

// one fetches a single record by id. The gateway wraps single areas in a
// one-element array, which is unwrapped here.
func (f *fetcher) one(ctx context.Context, res Resource, id string) (gjson.Result, bool) {
	data, ok := f.get(ctx, "spc", string(res), id)
	if !ok {
		return gjson.Result{}, false
	}
	record := data.Get(string(res))
	if !record.Exists() {
		f.log.Warning("Response for %s %s is missing the %q key", res, id, string(res))
		return gjson.Result{}, false
	}
	if record.IsArray() {
		records := record.Array()
		if len(records) == 0 {
			f.log.Warning("Response for %s %s is empty", res, id)
			return gjson.Result{}, false
		}
		return records[0], true
	}
	return record, true
}

func (f *fetcher) get(ctx context.Context, segments ...string) (gjson.Result, bool) {
	path := strings.Join(segments, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.api.JoinPath(segments...).String(), nil)
	if err != nil {
		f.log.Error("Could not build request for %s: %v", path, err)
		return gjson.Result{}, false
	}
	if f.username != "" {
		req.SetBasicAuth(f.username, f.password)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		f.log.Warning("Request for %s failed: %v", path, err)
		return gjson.Result{}, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		f.log.Warning("Request for %s returned HTTP %d", path, resp.StatusCode)
		return gjson.Result{}, false
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		f.log.Warning("Could not read response for %s: %v", path, err)
		return gjson.Result{}, false
	}
	if !gjson.ValidBytes(body) {
		f.log.Warning("Response for %s is not valid JSON", path)
		return gjson.Result{}, false
	}
	if status := gjson.GetBytes(body, "status").String(); status != "success" {
		f.log.Warning("Request for %s returned status %q", path, status)
		return gjson.Result{}, false
	}
	data := gjson.GetBytes(body, "data")
	if !data.Exists() {
		f.log.Warning("Response for %s has no data envelope", path)
		return gjson.Result{}, false
	}
	return data, true
}

// put sends a control request. Unlike reads these surface their failure to
// the caller.
func (f *fetcher) put(ctx context.Context, segments ...string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, f.api.JoinPath(segments...).String(), nil)
	if err != nil {
		return err
	}
	if f.username != "" {
		req.SetBasicAuth(f.username, f.password)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: HTTP %d", ErrCommandFailed, resp.StatusCode)
	}
	if status := gjson.GetBytes(body, "status").String(); status != "success" {
		return fmt.Errorf("%w: status %q", ErrCommandFailed, status)
	}
	return nil
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"catalog/internal/catalog"
	"catalog/internal/models"
)

type client struct {
	baseURL string
	token   string
	http    *http.Client
}

func newClient(flags commonFlags) *client {
	return &client{
		baseURL: strings.TrimRight(flags.url, "/"),
		token:   flags.token,
		http:    &http.Client{Timeout: flags.timeout},
	}
}

func (c *client) listProducts(flags listFlags) ([]models.Product, error) {
	query := url.Values{}
	if flags.search != "" {
		query.Set("search", flags.search)
	}
	if flags.category != "" {
		query.Set("category", flags.category)
	}
	if flags.brand != "" {
		query.Set("brand", flags.brand)
	}
	if flags.userView {
		query.Set("user", "true")
	}

	var products []models.Product
	if err := c.get("/api/v1/products", query, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *client) summary() (catalog.Summary, error) {
	var summary catalog.Summary
	err := c.get("/api/v1/products/summary", nil, &summary)
	return summary, err
}

func (c *client) get(path string, query url.Values, into interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var body struct {
			Message string `json:"message"`
		}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(raw, &body) == nil && body.Message != "" {
			return fmt.Errorf("%s: %s", resp.Status, body.Message)
		}
		return fmt.Errorf("%s", resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

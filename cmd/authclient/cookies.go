package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
)

// cookieStore persists the endpoint's cookies between invocations. Only
// names and values survive; the backend re-issues expiry on refresh.
type cookieStore struct {
	path     string
	endpoint string
	jar      http.CookieJar
}

type savedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func (s *cookieStore) url() (*url.URL, error) {
	u, err := url.Parse(s.endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	return u, nil
}

func (s *cookieStore) load() error {
	if s.path == "" {
		return nil
	}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read cookie file: %w", err)
	}

	var saved []savedCookie
	if err := json.Unmarshal(data, &saved); err != nil {
		return fmt.Errorf("decode cookie file %s: %w", s.path, err)
	}
	u, err := s.url()
	if err != nil {
		return err
	}
	cookies := make([]*http.Cookie, 0, len(saved))
	for _, c := range saved {
		cookies = append(cookies, &http.Cookie{Name: c.Name, Value: c.Value, Path: "/"})
	}
	s.jar.SetCookies(u, cookies)
	return nil
}

func (s *cookieStore) save() error {
	if s.path == "" {
		return nil
	}
	u, err := s.url()
	if err != nil {
		return err
	}

	cookies := s.jar.Cookies(u)
	if len(cookies) == 0 {
		if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove cookie file: %w", err)
		}
		return nil
	}

	saved := make([]savedCookie, 0, len(cookies))
	for _, c := range cookies {
		saved = append(saved, savedCookie{Name: c.Name, Value: c.Value})
	}
	data, err := json.MarshalIndent(saved, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cookies: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create cookie dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write cookie file: %w", err)
	}
	return nil
}

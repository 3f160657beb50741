package attendance

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/go-echarts/go-echarts/v2/types"
)

// Theme is the site colour scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ThemeKey is the single key the preference is persisted under.
const ThemeKey = "theme"

// ParseTheme accepts light or dark.
func ParseTheme(value string) (Theme, error) {
	switch theme := Theme(strings.ToLower(strings.TrimSpace(value))); theme {
	case ThemeLight, ThemeDark:
		return theme, nil
	default:
		return "", fmt.Errorf("attendance: unknown theme %q", value)
	}
}

// Opposite flips light and dark.
func (t Theme) Opposite() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// ChartTheme maps the site theme onto a go-echarts theme.
func (t Theme) ChartTheme() string {
	if t == ThemeDark {
		return types.ThemeWonderland
	}
	return types.ThemeWesteros
}

// ThemeStore persists the theme preference independent of the session.
// LoadTheme returns an empty Theme when nothing is stored.
type ThemeStore interface {
	LoadTheme(ctx context.Context) (Theme, error)
	SaveTheme(ctx context.Context, theme Theme) error
}

// InMemoryThemeStore keeps the preference for the life of the process.
type InMemoryThemeStore struct {
	mu    sync.RWMutex
	theme Theme
}

// NewInMemoryThemeStore creates an empty store.
func NewInMemoryThemeStore() *InMemoryThemeStore {
	return &InMemoryThemeStore{}
}

// LoadTheme implements ThemeStore.
func (s *InMemoryThemeStore) LoadTheme(context.Context) (Theme, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.theme, nil
}

// SaveTheme implements ThemeStore.
func (s *InMemoryThemeStore) SaveTheme(_ context.Context, theme Theme) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.theme = theme
	return nil
}

// ThemeController applies and persists the preference.
type ThemeController struct {
	store     ThemeStore
	telemetry Telemetry
	current   Theme
}

// NewThemeController wraps store; a nil store keeps the preference in memory.
func NewThemeController(store ThemeStore, telemetry Telemetry) *ThemeController {
	if store == nil {
		store = NewInMemoryThemeStore()
	}
	return &ThemeController{store: store, telemetry: normalizeTelemetry(telemetry), current: ThemeLight}
}

// Init loads the stored preference, defaulting to light.
func (c *ThemeController) Init(ctx context.Context) Theme {
	stored, err := c.store.LoadTheme(ctx)
	if err != nil {
		c.telemetry.Record(ctx, "attendance.theme.error", map[string]any{"op": "load", "error": err})
		c.current = ThemeLight
		return c.current
	}
	theme, err := ParseTheme(string(stored))
	if err != nil {
		theme = ThemeLight
	}
	c.current = theme
	return c.current
}

// Current returns the applied theme.
func (c *ThemeController) Current() Theme {
	return c.current
}

// Set applies theme and persists it. The applied theme changes even when persisting fails.
func (c *ThemeController) Set(ctx context.Context, theme Theme) error {
	if _, err := ParseTheme(string(theme)); err != nil {
		return err
	}
	c.current = theme
	if err := c.store.SaveTheme(ctx, theme); err != nil {
		c.telemetry.Record(ctx, "attendance.theme.error", map[string]any{"op": "save", "error": err})
		return fmt.Errorf("attendance: save theme: %w", err)
	}
	c.telemetry.Record(ctx, "attendance.theme.set", map[string]any{"theme": string(theme)})
	return nil
}

// Toggle flips the theme and persists it.
func (c *ThemeController) Toggle(ctx context.Context) (Theme, error) {
	next := c.current.Opposite()
	err := c.Set(ctx, next)
	return next, err
}

package pagecursor

import (
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// ReconcileStrategy defines how the window is kept consistent after a
// successful Insert, Update or Delete.
type ReconcileStrategy string

const (
	// ReconcilePatch edits the loaded window in place using the server
	// response.
	ReconcilePatch ReconcileStrategy = "patch"
	// ReconcileReload re-fetches the current page.
	ReconcileReload ReconcileStrategy = "reload"
)

func (s ReconcileStrategy) Valid() bool {
	return s == ReconcilePatch || s == ReconcileReload
}

// RawConfig is intended for configuration payloads (JSON files, API
// requests). Zero values fall back to defaults.
type RawConfig struct {
	PageSize    int      `json:"pageSize"`
	PrimaryKey  string   `json:"primaryKey"`
	InitialPage int      `json:"initialPage"`
	Reconcile   string   `json:"reconcile"`
	Sort        []string `json:"sort"`
}

// DecodeConfig converts RawConfig into *Config[T], normalizing the page size
// and validating the reconcile strategy.
func DecodeConfig[T any](raw RawConfig) (*Config[T], error) {
	cfg := NewConfig[T]().
		WithPageSize(raw.PageSize).
		WithInitialPage(raw.InitialPage).
		WithSort(raw.Sort...)

	if raw.PrimaryKey != "" {
		cfg = cfg.WithPrimaryKey(raw.PrimaryKey)
	}

	if raw.Reconcile != "" {
		strategy := ReconcileStrategy(strings.ToLower(strings.TrimSpace(raw.Reconcile)))
		if !strategy.Valid() {
			return nil, fmt.Errorf("invalid reconcile strategy '%s'", raw.Reconcile)
		}
		cfg = cfg.WithReconcileStrategy(strategy)
	}

	return cfg, nil
}

// Config holds the construction-time options of a PagedCursor.
type Config[T any] struct {
	pageSize    int
	primaryKey  string
	initialPage int
	reconcile   ReconcileStrategy
	sort        []string
	getters     Getters[T]
	comparator  Comparator[T]
	cloner      Cloner[T]
	logger      logrus.FieldLogger
}

func NewConfig[T any]() *Config[T] {
	return new(Config[T])
}

// WithPageSize sets the page capacity. NormalizePageSize is applied.
func (c *Config[T]) WithPageSize(size int) *Config[T] {
	if c == nil {
		c = new(Config[T])
	}

	c.pageSize = NormalizePageSize(size)

	return c
}

// WithPrimaryKey sets the field correlating local records with server
// identity.
func (c *Config[T]) WithPrimaryKey(field string) *Config[T] {
	if c == nil {
		c = new(Config[T])
	}

	c.primaryKey = field

	return c
}

// WithInitialPage sets the page the cursor starts on.
func (c *Config[T]) WithInitialPage(page int) *Config[T] {
	if c == nil {
		c = new(Config[T])
	}

	c.initialPage = NormalizePage(page)

	return c
}

// WithReconcileStrategy selects how mutations are reconciled with the window.
func (c *Config[T]) WithReconcileStrategy(strategy ReconcileStrategy) *Config[T] {
	if c == nil {
		c = new(Config[T])
	}

	c.reconcile = strategy

	return c
}

// WithSort sets orderings forwarded to the collection in every ListQuery,
// in the "column asc|desc" format.
func (c *Config[T]) WithSort(orderBy ...string) *Config[T] {
	if c == nil {
		c = new(Config[T])
	}

	c.sort = orderBy

	return c
}

// WithGetters sets field accessors used for primary key lookups.
func (c *Config[T]) WithGetters(getters Getters[T]) *Config[T] {
	if c == nil {
		c = new(Config[T])
	}

	c.getters = getters

	return c
}

// WithComparator overrides DefaultComparator for the unchanged-payload check
// of Update.
func (c *Config[T]) WithComparator(comparator Comparator[T]) *Config[T] {
	if c == nil {
		c = new(Config[T])
	}

	c.comparator = comparator

	return c
}

// WithCloner overrides DefaultCloner, used to keep the record Update compares
// payloads against independent of edits made to the returned record.
func (c *Config[T]) WithCloner(cloner Cloner[T]) *Config[T] {
	if c == nil {
		c = new(Config[T])
	}

	c.cloner = cloner

	return c
}

// WithLogger sets the logger. Without it the cursor logs nothing.
func (c *Config[T]) WithLogger(logger logrus.FieldLogger) *Config[T] {
	if c == nil {
		c = new(Config[T])
	}

	c.logger = logger

	return c
}

// GetPageSize returns the page size, DefaultPageSize when unset.
func (c *Config[T]) GetPageSize() int {
	if c == nil || c.pageSize == 0 {
		return DefaultPageSize
	}

	return c.pageSize
}

// GetPrimaryKey returns the primary key field, "id" when unset.
func (c *Config[T]) GetPrimaryKey() string {
	if c == nil || c.primaryKey == "" {
		return "id"
	}

	return c.primaryKey
}

// GetInitialPage returns the initial page, DefaultPage when unset.
func (c *Config[T]) GetInitialPage() int {
	if c == nil {
		return DefaultPage
	}

	return NormalizePage(c.initialPage)
}

// GetReconcileStrategy returns the strategy, ReconcileReload when unset.
func (c *Config[T]) GetReconcileStrategy() ReconcileStrategy {
	if c == nil || c.reconcile == "" {
		return ReconcileReload
	}

	return c.reconcile
}

func (c *Config[T]) getComparator() Comparator[T] {
	if c == nil || c.comparator == nil {
		return DefaultComparator[T]()
	}

	return c.comparator
}

func (c *Config[T]) getSort() []string {
	if c == nil {
		return nil
	}

	return c.sort
}

func (c *Config[T]) getGetters() Getters[T] {
	if c == nil {
		return nil
	}

	return c.getters
}

func (c *Config[T]) getCloner() Cloner[T] {
	if c == nil || c.cloner == nil {
		return DefaultCloner[T]()
	}

	return c.cloner
}

func (c *Config[T]) getLogger() logrus.FieldLogger {
	if c == nil || c.logger == nil {
		return discardLogger()
	}

	return c.logger
}

func discardLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)

	return l
}

func (c *Config[T]) validate() error {
	if !c.GetReconcileStrategy().Valid() {
		return newValidationError("reconcile", fmt.Sprintf("strategy '%s' is unknown", c.reconcile))
	}

	return nil
}

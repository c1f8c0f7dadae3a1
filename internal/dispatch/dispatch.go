// Package dispatch routes named operations ("buyers:create",
// "deals:updateStatus", ...) to the repositories and services, validates
// their payloads, and wraps every outcome in a uniform envelope.
//
// A call never fails across the boundary: errors, including panics, come
// back as an envelope with success false and a machine-readable code.
package dispatch

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/hotelcrm/internal/attachments"
	"github.com/mesh-intelligence/hotelcrm/internal/logging"
	"github.com/mesh-intelligence/hotelcrm/internal/stats"
	"github.com/mesh-intelligence/hotelcrm/pkg/types"
)

// Error codes shared by every operation. Operation-specific failures use
// <OPERATION>_ERROR and missing entities use <ENTITY>_NOT_FOUND.
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeConstraint   = "CONSTRAINT_VIOLATION"
	CodeFileNotFound = "FILE_NOT_FOUND"
	CodeInternal     = "INTERNAL_ERROR"
	CodeUnknownOp    = "UNKNOWN_OPERATION"
)

// Response is the envelope returned for every call.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   *Error `json:"error,omitempty"`
}

// Error describes a failed call.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type handler func(payload json.RawMessage) (any, error)

type route struct {
	handler  handler
	code     string // prefix of the <OPERATION>_ERROR code
	notFound string // <ENTITY>_NOT_FOUND
}

// Dispatcher holds the operation table.
type Dispatcher struct {
	store       types.Store
	stats       *stats.Service
	attachments *attachments.Store
	staleDays   int
	validate    *validator.Validate
	routes      map[string]route
	logger      *zap.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger used for failed calls.
func WithLogger(l *zap.Logger) Option {
	return func(d *Dispatcher) { d.logger = logging.OrNop(l) }
}

// WithStats sets the service behind the stats operations. Without it a
// service over the store is built with the system clock.
func WithStats(s *stats.Service) Option {
	return func(d *Dispatcher) { d.stats = s }
}

// WithAttachments enables the propertyAttachments:saveFile, open, and delete
// operations on disk. Without it only the record operations are available
// and properties:delete leaves attachment folders alone.
func WithAttachments(s *attachments.Store) Option {
	return func(d *Dispatcher) { d.attachments = s }
}

// WithStaleDays sets the default inactivity threshold for stats operations.
func WithStaleDays(days int) Option {
	return func(d *Dispatcher) { d.staleDays = days }
}

// clock is implemented by stores that carry their own time source.
type clock interface {
	Now() time.Time
}

// New builds a dispatcher over store. Without WithStats, the stats service
// shares the store's clock when it has one.
func New(store types.Store, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		store:     store,
		staleDays: types.DefaultStaleDays,
		validate:  newValidator(),
		routes:    map[string]route{},
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.stats == nil {
		statsOpts := []stats.Option{stats.WithLogger(d.logger)}
		if c, ok := store.(clock); ok {
			statsOpts = append(statsOpts, stats.WithClock(c.Now))
		}
		d.stats = stats.New(store, statsOpts...)
	}
	d.register()
	return d
}

// Operations lists the registered operation names, sorted.
func (d *Dispatcher) Operations() []string {
	ops := make([]string, 0, len(d.routes))
	for name := range d.routes {
		ops = append(ops, name)
	}
	sort.Strings(ops)
	return ops
}

// Call runs one operation. payload may be empty or JSON null when the
// operation takes no arguments.
func (d *Dispatcher) Call(operation string, payload json.RawMessage) (resp Response) {
	r, ok := d.routes[operation]
	if !ok {
		return failure(CodeUnknownOp, fmt.Sprintf("unknown operation %q", operation))
	}

	defer func() {
		if p := recover(); p != nil {
			d.logger.Error("operation panicked",
				zap.String("operation", operation),
				zap.Any("panic", p),
				zap.Stack("stack"),
			)
			resp = failure(CodeInternal, fmt.Sprint(p))
		}
	}()

	data, err := r.handler(payload)
	if err != nil {
		code := d.errorCode(r, err)
		d.logger.Warn("operation failed",
			zap.String("operation", operation),
			zap.String("code", code),
			zap.Error(err),
		)
		return failure(code, err.Error())
	}
	return Response{Success: true, Data: data}
}

func (d *Dispatcher) errorCode(r route, err error) string {
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs),
		errors.Is(err, types.ErrValidation),
		errors.Is(err, types.ErrUnsupportedFileType),
		errors.Is(err, types.ErrFileTooLarge):
		return CodeValidation
	case errors.Is(err, attachments.ErrFileMissing):
		return CodeFileNotFound
	case errors.Is(err, types.ErrNotFound) && r.notFound != "":
		return r.notFound
	case errors.Is(err, types.ErrConstraint):
		return CodeConstraint
	default:
		return r.code + "_ERROR"
	}
}

func failure(code, message string) Response {
	return Response{Error: &Error{Code: code, Message: message}}
}

// operationCode turns "propertyAttachments:getByProperty" into
// "PROPERTY_ATTACHMENTS_GET_BY_PROPERTY".
func operationCode(operation string) string {
	var b strings.Builder
	for i, r := range operation {
		switch {
		case r == ':':
			b.WriteByte('_')
		case unicode.IsUpper(r) && i > 0 && operation[i-1] != ':':
			b.WriteByte('_')
			b.WriteRune(r)
		default:
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return b.String()
}

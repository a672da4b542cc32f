package middleware

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/erebus-go/erebus/pkg/router"
)

// Span attribute keys set on every dispatch span.
const (
	AttrPath        = attribute.Key("erebus.path")
	AttrPattern     = attribute.Key("erebus.pattern")
	AttrDefault     = attribute.Key("erebus.default")
	attrParamPrefix = "erebus.param."
)

// OTelConfig configures the tracing middleware.
type OTelConfig struct {
	// TracerName names the tracer. Default: "erebus".
	TracerName string

	// TracerProvider supplies the tracer. Default: otel.GetTracerProvider().
	TracerProvider trace.TracerProvider

	// IncludeParams records route parameters as erebus.param.<name>.
	// Off by default since parameters may carry user data.
	IncludeParams bool

	// Filter, when set, limits tracing to dispatches it accepts.
	Filter func(d *router.Dispatch) bool

	// AttributeExtractor adds attributes to each span.
	AttributeExtractor func(d *router.Dispatch) []attribute.KeyValue
}

// OTelOption configures the tracing middleware.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) { c.TracerName = name }
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) OTelOption {
	return func(c *OTelConfig) { c.TracerProvider = tp }
}

// WithIncludeParams toggles route parameter attributes.
func WithIncludeParams(include bool) OTelOption {
	return func(c *OTelConfig) { c.IncludeParams = include }
}

// WithDispatchFilter traces only the dispatches filter accepts.
func WithDispatchFilter(filter func(d *router.Dispatch) bool) OTelOption {
	return func(c *OTelConfig) { c.Filter = filter }
}

// WithAttributeExtractor adds the attributes fn returns to each span.
func WithAttributeExtractor(fn func(d *router.Dispatch) []attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) { c.AttributeExtractor = fn }
}

// OpenTelemetry returns middleware that wraps each dispatch in an internal
// span named "erebus <pattern>". The handler runs with the span in its
// context, so fragment fetches started by controllers join the trace. A
// failed dispatch records the error and sets the span status to Error.
//
//	otel.SetTracerProvider(tp)
//	engine := router.New(router.WithMiddleware(middleware.OpenTelemetry()))
func OpenTelemetry(opts ...OTelOption) router.Middleware {
	cfg := OTelConfig{TracerName: "erebus"}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.TracerProvider == nil {
		cfg.TracerProvider = otel.GetTracerProvider()
	}
	tracer := cfg.TracerProvider.Tracer(cfg.TracerName)

	return router.MiddlewareFunc(func(ctx context.Context, d *router.Dispatch, next func(context.Context) error) error {
		if cfg.Filter != nil && !cfg.Filter(d) {
			return next(ctx)
		}

		ctx, span := tracer.Start(ctx, "erebus "+patternLabel(d),
			trace.WithSpanKind(trace.SpanKindInternal),
			trace.WithAttributes(cfg.attributes(d)...),
		)
		defer span.End()

		if err := next(ctx); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
		span.SetStatus(codes.Ok, "")
		return nil
	})
}

func (cfg *OTelConfig) attributes(d *router.Dispatch) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		AttrPath.String(d.Path),
		AttrPattern.String(d.Pattern),
		AttrDefault.Bool(d.Default),
	}
	if cfg.IncludeParams {
		for name, value := range d.Params {
			attrs = append(attrs, attribute.String(attrParamPrefix+name, value))
		}
	}
	if cfg.AttributeExtractor != nil {
		attrs = append(attrs, cfg.AttributeExtractor(d)...)
	}
	return attrs
}

// SpanFromContext returns the dispatch span in ctx, or nil if ctx holds no
// valid span.
func SpanFromContext(ctx context.Context) trace.Span {
	if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		return span
	}
	return nil
}

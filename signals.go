package dripper

import (
	"context"
	"time"

	"github.com/zoobzio/capitan"
)

// Signals for dripper events.
var (
	SignalCompiled          = capitan.NewSignal("dripper.compile.complete", "Declaration compiled")
	SignalProcessorCreated  = capitan.NewSignal("dripper.processor.created", "Processor instantiated")
	SignalApplyStart        = capitan.NewSignal("dripper.apply.start", "Extraction beginning")
	SignalApplyComplete     = capitan.NewSignal("dripper.apply.complete", "Extraction finished")
	SignalCatalogHit        = capitan.NewSignal("dripper.catalog.hit", "Declaration served from catalog cache")
	SignalCatalogMiss       = capitan.NewSignal("dripper.catalog.miss", "Declaration compiled into catalog cache")
	SignalBindingRegistered = capitan.NewSignal("dripper.binding.registered", "Struct binding built")
)

// Keys for typed event data.
var (
	KeyName        = capitan.NewStringKey("name")
	KeyDeclKind    = capitan.NewStringKey("declaration_kind")
	KeyContentType = capitan.NewStringKey("content_type")
	KeyTypeName    = capitan.NewStringKey("type_name")
	KeyDigest      = capitan.NewStringKey("digest")
	KeySize        = capitan.NewIntKey("size")
	KeyFieldCount  = capitan.NewIntKey("field_count")
	KeyDuration    = capitan.NewDurationKey("duration")
	KeyError       = capitan.NewErrorKey("error")
)

// emitCompiled emits an event when a declaration finishes compiling.
func emitCompiled(ctx context.Context, kind string, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyDeclKind.Field(kind),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalCompiled, fields...)
	} else {
		capitan.Emit(ctx, SignalCompiled, fields...)
	}
}

// emitProcessorCreated emits an event when a processor is created.
func emitProcessorCreated(ctx context.Context, name, contentType string) {
	capitan.Emit(ctx, SignalProcessorCreated,
		KeyName.Field(name),
		KeyContentType.Field(contentType),
	)
}

// emitApplyStart emits an event when extraction begins.
func emitApplyStart(ctx context.Context, name string) {
	capitan.Emit(ctx, SignalApplyStart,
		KeyName.Field(name),
	)
}

// emitApplyComplete emits an event when extraction finishes.
func emitApplyComplete(ctx context.Context, name string, size int, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyName.Field(name),
		KeySize.Field(size),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalApplyComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalApplyComplete, fields...)
	}
}

// emitCatalogLookup emits a hit or miss event for a catalog load.
func emitCatalogLookup(ctx context.Context, contentType, digest string, hit bool) {
	signal := SignalCatalogMiss
	if hit {
		signal = SignalCatalogHit
	}
	capitan.Emit(ctx, signal,
		KeyContentType.Field(contentType),
		KeyDigest.Field(digest),
	)
}

// emitBindingRegistered emits an event when a struct binding is built.
func emitBindingRegistered(ctx context.Context, typeName string, fieldCount int) {
	capitan.Emit(ctx, SignalBindingRegistered,
		KeyTypeName.Field(typeName),
		KeyFieldCount.Field(fieldCount),
	)
}

package migrate

import (
	"context"
	"fmt"
	"strings"

	"github.com/pressly/goose/v3"

	"github.com/angelmondragon/devicemove-backend/pkg/logger"
)

// gooseLogger routes goose output into the structured logger.
type gooseLogger struct {
	ctx  context.Context
	logg *logger.Logger
}

func (g gooseLogger) Printf(format string, v ...any) {
	g.logg.Info(g.ctx, strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (g gooseLogger) Fatalf(format string, v ...any) {
	g.logg.Error(g.ctx, "goose fatal", fmt.Errorf(format, v...))
}

// UseLogger sends goose output to logg; nil silences goose entirely.
func UseLogger(ctx context.Context, logg *logger.Logger) {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	if logg == nil {
		goose.SetLogger(goose.NopLogger())
		return
	}
	goose.SetLogger(gooseLogger{ctx: logg.WithField(ctx, "component", "goose"), logg: logg})
}

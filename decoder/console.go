package decoder

import (
	"log/slog"

	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/console"
	"github.com/dop251/goja_nodejs/require"
)

// slogPrinter routes console.log/warn/error from decode scripts into slog.
type slogPrinter struct{}

func (slogPrinter) Log(msg string)   { slog.Info(msg, "module", "decoder") }
func (slogPrinter) Warn(msg string)  { slog.Warn(msg, "module", "decoder") }
func (slogPrinter) Error(msg string) { slog.Error(msg, "module", "decoder") }

func enableConsole(vm *goja.Runtime) {
	registry := require.NewRegistry()
	registry.RegisterNativeModule(console.ModuleName, console.RequireWithPrinter(slogPrinter{}))
	registry.Enable(vm)
	console.Enable(vm)
}

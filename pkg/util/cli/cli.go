package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Silent silences all the non-error messages
var Silent bool

// Verbose allows printing info messages.
var Verbose bool

// DisableColors turns colors off, they are also off if stdout is not a terminal.
func DisableColors(disable bool) {
	fd := os.Stdout.Fd()
	color.NoColor = disable || !(isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd))
}

// NewLogger returns the logger of the library packages, logging
// to stderr if Verbose is set and nowhere otherwise.
func NewLogger() *zap.Logger {
	if !Verbose || Silent {
		return zap.NewNop()
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = true
	cfg.DisableCaller = true
	if !color.NoColor {
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	logger, err := cfg.Build()
	if err != nil {
		Warningln("Failed to create logger: ", err)
		return zap.NewNop()
	}

	return logger
}

// Warningln formats warning message
func Warningln(content ...interface{}) {
	if Silent {
		return
	}
	fmt.Println("[" + color.YellowString("!") + "] " + fmt.Sprint(content...))
}

// Successln formats success message
func Successln(content ...interface{}) {
	if Silent {
		return
	}
	fmt.Println("[" + color.GreenString("✓") + "] " + fmt.Sprint(content...))
}

// Infoln formats info message
func Infoln(content ...interface{}) {
	if Silent {
		return
	}
	fmt.Println("[" + color.BlueString("•") + "] " + fmt.Sprint(content...))
}

// Verboseln formats info message
func Verboseln(content ...interface{}) {
	if Silent || !Verbose {
		return
	}
	fmt.Println("[" + color.BlueString("•") + "] " + fmt.Sprint(content...))
}

// Failureln formats failure message
func Failureln(content ...interface{}) {
	fmt.Println("[" + color.RedString("x") + "] " + fmt.Sprint(content...))
}

// Warningf formats warning message
func Warningf(format string, values ...interface{}) {
	if Silent {
		return
	}
	fmt.Print("[" + color.YellowString("!") + "] " + fmt.Sprintf(format, values...))
}

// Successf formats success message
func Successf(format string, values ...interface{}) {
	if Silent {
		return
	}
	fmt.Print("[" + color.GreenString("✓") + "] " + fmt.Sprintf(format, values...))
}

// Infof formats info message
func Infof(format string, values ...interface{}) {
	if Silent {
		return
	}
	fmt.Print("[" + color.BlueString("•") + "] " + fmt.Sprintf(format, values...))
}

// Verbosef formats info message
func Verbosef(format string, values ...interface{}) {
	if Silent || !Verbose {
		return
	}
	fmt.Print("[" + color.BlueString("•") + "] " + fmt.Sprintf(format, values...))
}

// Failuref formats failure message
func Failuref(format string, values ...interface{}) {
	fmt.Print("[" + color.RedString("x") + "] " + fmt.Sprintf(format, values...))
}

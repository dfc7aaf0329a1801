/*
 * MIT License
 *
 * Copyright (c) 2022-2025  Arsene Tochemey Gandote
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

package log

import (
	"io"
	"os"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	fileBufferSize    = 256 * 1024
	fileFlushInterval = 30 * time.Second
)

// Zap is the zap backed Logger.
//
// Entries below ErrorLevel written to files go through a buffered syncer that
// Flush drains. Errors and every entry written to the std streams or to any
// other writer are written immediately.
type Zap struct {
	sugar    *zap.SugaredLogger
	level    Level
	files    []*os.File
	buffered *zapcore.BufferedWriteSyncer
}

// enforce compilation and linter error
var _ Logger = (*Zap)(nil)

// NewZap creates a Zap logger writing at level to writers, os.Stdout when none is given.
func NewZap(level Level, writers ...io.Writer) *Zap {
	if len(writers) == 0 {
		writers = []io.Writer{os.Stdout}
	}

	z := &Zap{level: level}
	minLevel := toZapLevel(level)
	encoder := zapcore.NewJSONEncoder(encoderConfig())

	var direct []zapcore.WriteSyncer
	for _, writer := range writers {
		if file, ok := writer.(*os.File); ok && !isStdStream(file) {
			z.files = append(z.files, file)
			continue
		}
		direct = append(direct, zapcore.AddSync(writer))
	}

	cores := make([]zapcore.Core, 0, 3)
	if len(direct) > 0 {
		cores = append(cores, zapcore.NewCore(encoder, zap.CombineWriteSyncers(direct...), minLevel))
	}

	if len(z.files) > 0 {
		target := combineFiles(z.files)
		if minLevel >= zapcore.ErrorLevel {
			cores = append(cores, zapcore.NewCore(encoder, target, minLevel))
		} else {
			z.buffered = &zapcore.BufferedWriteSyncer{WS: target, Size: fileBufferSize, FlushInterval: fileFlushInterval}
			cores = append(cores,
				zapcore.NewCore(encoder, z.buffered, levelRange(minLevel, zapcore.ErrorLevel)),
				zapcore.NewCore(encoder, target, levelRange(zapcore.ErrorLevel, zapcore.InvalidLevel)))
		}
	}

	z.sugar = zap.New(zapcore.NewTee(cores...),
		zap.AddCaller(),
		zap.AddCallerSkip(1),
		zap.AddStacktrace(zapcore.ErrorLevel)).Sugar()
	return z
}

// Debug starts a message with debug level
func (z *Zap) Debug(v ...any) {
	z.sugar.Debug(v...)
}

// Debugf starts a message with debug level
func (z *Zap) Debugf(format string, v ...any) {
	z.sugar.Debugf(format, v...)
}

// Info starts a message with info level
func (z *Zap) Info(v ...any) {
	z.sugar.Info(v...)
}

// Infof starts a message with info level
func (z *Zap) Infof(format string, v ...any) {
	z.sugar.Infof(format, v...)
}

// Warn starts a message with warn level
func (z *Zap) Warn(v ...any) {
	z.sugar.Warn(v...)
}

// Warnf starts a message with warn level
func (z *Zap) Warnf(format string, v ...any) {
	z.sugar.Warnf(format, v...)
}

// Error starts a new message with error level.
func (z *Zap) Error(v ...any) {
	z.sugar.Error(v...)
}

// Errorf starts a new message with error level.
func (z *Zap) Errorf(format string, v ...any) {
	z.sugar.Errorf(format, v...)
}

// Enabled reports whether the given level is enabled.
func (z *Zap) Enabled(level Level) bool {
	return z.sugar.Level().Enabled(toZapLevel(level))
}

// LogLevel returns the log level that is used
func (z *Zap) LogLevel() Level {
	return z.level
}

// With returns a Logger carrying the given key-value pairs on every entry.
// A trailing value without a key is recorded under "_" and pairs whose key is
// not a string are skipped.
func (z *Zap) With(keyValues ...any) Logger {
	fields := toFields(keyValues)
	if len(fields) == 0 {
		return z
	}

	clone := *z
	clone.sugar = z.sugar.Desugar().With(fields...).Sugar()
	return &clone
}

// Flush drains the buffered file entries and syncs the files
func (z *Zap) Flush() error {
	var err error
	if z.buffered != nil {
		err = z.buffered.Sync()
	}

	for _, file := range z.files {
		err = multierr.Append(err, file.Sync())
	}
	return err
}

func toFields(keyValues []any) []zap.Field {
	fields := make([]zap.Field, 0, len(keyValues)/2+1)
	for len(keyValues) > 0 {
		if len(keyValues) == 1 {
			fields = append(fields, zap.Any("_", keyValues[0]))
			break
		}

		if key, ok := keyValues[0].(string); ok {
			fields = append(fields, zap.Any(key, keyValues[1]))
		}
		keyValues = keyValues[2:]
	}
	return fields
}

func encoderConfig() zapcore.EncoderConfig {
	config := zap.NewProductionEncoderConfig()
	config.TimeKey = "ts"
	config.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncodeDuration = zapcore.StringDurationEncoder
	return config
}

// levelRange enables the levels in [from, to)
func levelRange(from, to zapcore.Level) zap.LevelEnablerFunc {
	return func(level zapcore.Level) bool {
		return level >= from && level < to
	}
}

func combineFiles(files []*os.File) zapcore.WriteSyncer {
	syncers := make([]zapcore.WriteSyncer, len(files))
	for i, file := range files {
		syncers[i] = zapcore.AddSync(file)
	}
	return zap.CombineWriteSyncers(syncers...)
}

func isStdStream(file *os.File) bool {
	if file == nil {
		return false
	}
	fd := file.Fd()
	return fd == os.Stdout.Fd() || fd == os.Stderr.Fd()
}

func toZapLevel(level Level) zapcore.Level {
	switch level {
	case InfoLevel:
		return zapcore.InfoLevel
	case WarningLevel:
		return zapcore.WarnLevel
	case ErrorLevel:
		return zapcore.ErrorLevel
	default:
		return zapcore.DebugLevel
	}
}

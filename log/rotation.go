// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package log

import (
	"io"

	"gopkg.in/natefinch/lumberjack.v2"
)

// RotationConfig controls size-based rotation of a log file.
type RotationConfig struct {
	// FileName is the file to write logs to. Backup files are kept in the
	// same directory.
	FileName string
	// MaxSizeMB is the maximum size in megabytes the file can reach before
	// it is rotated. Defaults to 100 when zero.
	MaxSizeMB int
	// MaxBackups is the maximum number of rotated files to retain. Zero
	// retains all of them.
	MaxBackups int
	// MaxAgeDays is the maximum number of days to retain rotated files.
	// Zero retains them indefinitely.
	MaxAgeDays int
	// Compress gzips rotated files when set.
	Compress bool
}

// RotatedWriter returns a writer that rotates the underlying file per the
// given config. The writer is safe for concurrent use and can be handed
// straight to New.
func RotatedWriter(config RotationConfig) io.WriteCloser {
	return &lumberjack.Logger{
		Filename:   config.FileName,
		MaxSize:    config.MaxSizeMB,
		MaxBackups: config.MaxBackups,
		MaxAge:     config.MaxAgeDays,
		Compress:   config.Compress,
	}
}

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

package membership

// Status is the membership status of a host as seen by the cluster
type Status int

const (
	StatusNone Status = iota
	StatusCreated
	StatusJoining
	StatusActive
	StatusShuttingDown
	StatusStopping
	StatusDead
)

// String implements fmt.Stringer
func (s Status) String() string {
	switch s {
	case StatusCreated:
		return "Created"
	case StatusJoining:
		return "Joining"
	case StatusActive:
		return "Active"
	case StatusShuttingDown:
		return "ShuttingDown"
	case StatusStopping:
		return "Stopping"
	case StatusDead:
		return "Dead"
	default:
		return "None"
	}
}

// IsTerminating reports whether a host with this status is leaving the cluster
func (s Status) IsTerminating() bool {
	return s == StatusShuttingDown || s == StatusStopping || s == StatusDead
}

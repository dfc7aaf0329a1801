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

// Package lifecycle implements the staged start and stop protocol of a host.
//
// Collaborators subscribe start and stop callbacks at well-known stages.
// OnStart runs the stages in ascending order and OnStop in descending order.
// Within one stage every participant runs concurrently and the stage completes
// once all of them returned.
package lifecycle

import (
	"math"
	"strconv"
)

// Stage orders the participants of the lifecycle.
// Stage values are agreed constants so that independently built participants
// interleave deterministically.
type Stage int

const (
	// StageFirst is the first valid stage
	StageFirst Stage = math.MinInt32
	// StageRuntimeInitialize initializes the runtime
	StageRuntimeInitialize Stage = 2000
	// StageRuntimeServices starts the runtime services
	StageRuntimeServices Stage = 4000
	// StageRuntimeStorageServices initializes the storage services
	StageRuntimeStorageServices Stage = 6000
	// StageRuntimeGrainServices starts the extension services
	StageRuntimeGrainServices Stage = 8000
	// StageAfterRuntimeGrainServices runs right after the extension services
	StageAfterRuntimeGrainServices Stage = 8100
	// StageApplicationServices starts the application layer services
	StageApplicationServices Stage = 10000
	// StageBecomeActive makes the host active in the cluster
	StageBecomeActive Stage = StageActive - 1
	// StageActive is reached once the host is fully active
	StageActive Stage = 20000
	// StageLast is the last valid stage
	StageLast Stage = math.MaxInt32
)

var stageNames = map[Stage]string{
	StageFirst:                     "First",
	StageRuntimeInitialize:         "RuntimeInitialize",
	StageRuntimeServices:           "RuntimeServices",
	StageRuntimeStorageServices:    "RuntimeStorageServices",
	StageRuntimeGrainServices:      "RuntimeGrainServices",
	StageAfterRuntimeGrainServices: "AfterRuntimeGrainServices",
	StageApplicationServices:       "ApplicationServices",
	StageBecomeActive:              "BecomeActive",
	StageActive:                    "Active",
	StageLast:                      "Last",
}

// String returns the name of a well-known stage, the number otherwise
func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return strconv.Itoa(int(s))
}

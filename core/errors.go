/* Copyright 2018-2019 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package core

// These errors are user errors, not internal errors.

// InvalidArgument occurs when a Spec or Machine is requested without
// a Config.
type InvalidArgument struct {
	Arg string
}

func (e *InvalidArgument) Error() string {
	return `invalid argument: no ` + e.Arg
}

// UnknownState occurs when ChangeState is asked to go to a state that
// isn't in the Spec.
type UnknownState struct {
	State string
}

func (e *UnknownState) Error() string {
	return `state "` + e.State + `" doesn't exist`
}

// UnknownEvent occurs when Trigger is given an event that the current
// state has no transition for.
type UnknownEvent struct {
	Event string
	State string
}

func (e *UnknownEvent) Error() string {
	return `event "` + e.Event + `" doesn't exist in current state "` + e.State + `"`
}

// BadConfig occurs when ParseConfig finds something it doesn't
// recognize.
type BadConfig struct {
	// Key is the offending key (if any).
	Key string

	// Reason says what's wrong.
	Reason string
}

func (e *BadConfig) Error() string {
	if e.Key == "" {
		return "bad config: " + e.Reason
	}
	return `bad config: key "` + e.Key + `": ` + e.Reason
}

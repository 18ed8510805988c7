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

// Package core provides the core gear for configuration-driven state
// machines with undo and redo.
//
// A Config gives an initial state and a set of states, each with
// transitions from event names to target states.  NewSpec makes an
// immutable Spec from a Config, and a Spec makes Machines.
//
// A Machine moves either directly (ChangeState) or by following a
// transition (Trigger).  Every committed move is recorded in the
// Machine's History, which supports Undo and Redo.  Undo and Redo
// trust the History: they don't consult the Spec.
//
// The History has two stacks.  The undo stack gets the state that a
// transition left, and the redo stack gets the state that the
// transition entered.  Undo pops from the end of the undo stack.
// Redo shifts from the front of the redo stack.  When the undo stack
// is empty and the redo stack isn't, the next ChangeState or Trigger
// drops just the oldest redo entry, and it does that before checking
// whether the move is valid.
//
// A Machine does no locking and never blocks.  See package crew for
// a way to share Machines among goroutines.
package core

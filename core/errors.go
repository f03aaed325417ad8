/*
 * Copyright (C) 2026 Nuts community
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 *
 */

package core

import "fmt"

// WrapError returns an error that carries both err and its cause: errors.Is and errors.As match either of them,
// which fmt.Errorf only allows for the wrapped (%w) error.
func WrapError(err error, cause error) error {
	return wrappedError{err: err, cause: cause}
}

type wrappedError struct {
	err   error
	cause error
}

// Error formats with %v so a nil err or cause doesn't cause a nil dereference.
func (w wrappedError) Error() string {
	return fmt.Sprintf("%v: %v", w.err, w.cause)
}

func (w wrappedError) Unwrap() []error {
	return []error{w.err, w.cause}
}

// SPDX-License-Identifier: MIT
package ode

import (
	"fmt"
	"strings"
)

// Method names an integration scheme.
type Method string

const (
	// RK4 is the classic fixed-step fourth-order Runge–Kutta method.
	RK4 Method = "odeint::runge_kutta4"
	// CashKarp54 is the adaptive Cash–Karp 5(4) embedded pair.
	CashKarp54 Method = "odeint::runge_kutta_cash_karp54"
	// Dopri5 is the adaptive Dormand–Prince 5(4) embedded pair.
	Dopri5 Method = "odeint::runge_kutta_dopri5"
)

const methodPrefix = "odeint::"

// Methods lists every supported method in a stable order.
func Methods() []Method {
	return []Method{RK4, CashKarp54, Dopri5}
}

// ParseMethod resolves a user-supplied name, accepting names with or without
// the "odeint::" prefix.
func ParseMethod(name string) (Method, error) {
	full := strings.TrimSpace(name)
	if !strings.HasPrefix(full, methodPrefix) {
		full = methodPrefix + full
	}
	for _, m := range Methods() {
		if string(m) == full {
			return m, nil
		}
	}

	return "", fmt.Errorf("ParseMethod(%q): %w", name, ErrUnknownMethod)
}

// Adaptive reports whether the method controls its own step size.
func (m Method) Adaptive() bool {
	t, ok := tableaus[m]

	return ok && t.embedded()
}

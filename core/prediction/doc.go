// Package prediction provides advisory forecasts for trainsets: expected
// service hours, maintenance duration and failure probability. Forecasts are
// shown to operators next to induction decisions and never change them.
package prediction

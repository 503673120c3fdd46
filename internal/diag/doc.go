// Package diag defines the coded error model shared by every generation stage.
//
// A generation run is a one-shot transform: every failure aborts it. Stages
// therefore never collect findings; they return a *Error carrying a Code whose
// ID is stable across releases (CTX, MET, TYP, SCP, GEN, PAT and IO groups, see
// codes.go). Callers recover the code through wrapping with CodeOf.
//
// Package diag performs no formatting beyond Error() and no IO. Colouring and
// exit codes live in cmd/spbg.
package diag

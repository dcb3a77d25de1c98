// Package registry assembles the CLI task namespace from a declared set of
// task modules. Required modules must load or construction fails; optional
// modules are probed for their runtime prerequisite first and skipped when
// the probe fails; alias registration nests a module's commands under a
// dedicated child namespace so its command names only need to be unique
// within that scope. The registry is populated once at startup and the
// resulting namespace is read-only afterwards.
package registry

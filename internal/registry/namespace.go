package registry

import (
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

const (
	namespaceShortDescriptionTemplateConstant = "%s commands"
	rootNamespaceNameConstant                 = ""
)

type namespaceEntry struct {
	moduleName string
	command    *cobra.Command
	child      *Namespace
}

// Namespace is a name-keyed set of commands and nested namespaces produced by
// a Registry build. It is read-only once the build completes.
type Namespace struct {
	name        string
	description string
	entries     map[string]*namespaceEntry
}

func newNamespace(name string) *Namespace {
	return &Namespace{
		name:    name,
		entries: map[string]*namespaceEntry{},
	}
}

// Name returns the namespace name; the root namespace name is empty.
func (namespace *Namespace) Name() string {
	return namespace.name
}

// EntryCount reports the number of direct children.
func (namespace *Namespace) EntryCount() int {
	return len(namespace.entries)
}

// EntryNames returns the sorted names of direct children.
func (namespace *Namespace) EntryNames() []string {
	names := make([]string, 0, len(namespace.entries))
	for entryName := range namespace.entries {
		names = append(names, entryName)
	}
	sort.Strings(names)
	return names
}

func (namespace *Namespace) addCommand(moduleName string, command *cobra.Command) error {
	commandName := commandNameFromUse(command.Use)
	if existingEntry, exists := namespace.entries[commandName]; exists {
		return DuplicateCommandError{
			CommandName:      commandName,
			FirstModuleName:  existingEntry.moduleName,
			SecondModuleName: moduleName,
		}
	}
	namespace.entries[commandName] = &namespaceEntry{moduleName: moduleName, command: command}
	return nil
}

func (namespace *Namespace) addChild(moduleName string, child *Namespace) error {
	if existingEntry, exists := namespace.entries[child.name]; exists {
		return DuplicateCommandError{
			CommandName:      child.name,
			FirstModuleName:  existingEntry.moduleName,
			SecondModuleName: moduleName,
		}
	}
	namespace.entries[child.name] = &namespaceEntry{moduleName: moduleName, child: child}
	return nil
}

// Resolve walks the provided path segments and returns the addressed command.
func (namespace *Namespace) Resolve(path ...string) (*cobra.Command, error) {
	if len(path) == 0 {
		return nil, CommandNotFoundError{Path: path}
	}

	entry, exists := namespace.entries[path[0]]
	if !exists {
		return nil, CommandNotFoundError{Path: path}
	}

	if len(path) == 1 {
		if entry.command == nil {
			return nil, CommandNotFoundError{Path: path}
		}
		return entry.command, nil
	}

	if entry.child == nil {
		return nil, CommandNotFoundError{Path: path}
	}

	resolvedCommand, resolveError := entry.child.Resolve(path[1:]...)
	if resolveError != nil {
		return nil, CommandNotFoundError{Path: path}
	}
	return resolvedCommand, nil
}

// AttachTo materializes the namespace onto the provided Cobra root command.
// Nested namespaces become group commands that print help when invoked bare
// and fail on unresolved subcommand names.
func (namespace *Namespace) AttachTo(rootCommand *cobra.Command) {
	if rootCommand == nil {
		return
	}

	for _, entryName := range namespace.EntryNames() {
		entry := namespace.entries[entryName]
		if entry.command != nil {
			rootCommand.AddCommand(entry.command)
			continue
		}
		groupCommand := newGroupCommand(entry.child.name, entry.child.description)
		entry.child.AttachTo(groupCommand)
		rootCommand.AddCommand(groupCommand)
	}
}

func newGroupCommand(use string, shortDescription string) *cobra.Command {
	return &cobra.Command{
		Use:           use,
		Short:         shortDescription,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
	}
}

func commandNameFromUse(use string) string {
	trimmedUse := strings.TrimSpace(use)
	if separatorIndex := strings.IndexAny(trimmedUse, " \t"); separatorIndex >= 0 {
		return trimmedUse[:separatorIndex]
	}
	return trimmedUse
}

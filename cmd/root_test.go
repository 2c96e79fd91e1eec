package cmd

import "testing"

func TestRootCommands(t *testing.T) {
	root := NewRootCmd()
	for _, name := range []string{"list", "get", "create", "update", "photo", "delete", "export", "import", "serve"} {
		sub, _, err := root.Find([]string{name})
		if err != nil || sub.Name() != name {
			t.Errorf("Expected subcommand %s, got %v (%v)", name, sub, err)
		}
	}
	for _, flag := range []string{"config", "api-url", "page-size", "timeout", "output", "verbose", "log-format", "log-level", "no-color"} {
		if root.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("Expected persistent flag --%s", flag)
		}
	}
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vigilmon/vigil/pkg/confpkg"
	"github.com/vigilmon/vigil/pkg/depgraph"
	"github.com/vigilmon/vigil/pkg/events"
	"github.com/vigilmon/vigil/pkg/objects"
	"github.com/vigilmon/vigil/pkg/runtimeconfig"
	"github.com/vigilmon/vigil/pkg/storage"
	"github.com/vigilmon/vigil/pkg/types"
)

var objectCmd = &cobra.Command{
	Use:   "object",
	Short: "Manage runtime configuration objects",
}

var objectCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a runtime configuration object",
	Long: `Create a runtime configuration object in the reserved _api package.

The attributes are read from a YAML file, for example:

  # host.yaml
  attrs:
    address: 192.0.2.10
    check_command: hostalive

  vigil object create --type Host --name web01 -f host.yaml`,
	RunE: runObjectCreate,
}

var objectDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete a runtime configuration object",
	RunE:  runObjectDelete,
}

var objectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List runtime configuration objects",
	Long: `List the indexed runtime configuration objects.

With --orphans, list only index records whose backing config file has
vanished (an interrupted delete or a file removed out of band).`,
	RunE: runObjectList,
}

func init() {
	objectCreateCmd.Flags().String("type", "", "Object type (required)")
	objectCreateCmd.Flags().String("name", "", "Full object name (required)")
	objectCreateCmd.Flags().StringP("file", "f", "", "YAML file with object attributes")
	objectCreateCmd.Flags().StringArray("template", nil, "Template to apply (repeatable)")
	objectCreateCmd.Flags().Bool("ignore-on-error", false, "Skip the object instead of failing on validation errors")
	_ = objectCreateCmd.MarkFlagRequired("type")
	_ = objectCreateCmd.MarkFlagRequired("name")

	objectDeleteCmd.Flags().String("type", "", "Object type (required)")
	objectDeleteCmd.Flags().String("name", "", "Full object name (required)")
	objectDeleteCmd.Flags().Bool("cascade", false, "Also delete objects depending on this one")
	_ = objectDeleteCmd.MarkFlagRequired("type")
	_ = objectDeleteCmd.MarkFlagRequired("name")

	objectListCmd.Flags().Bool("orphans", false, "List only records whose backing file is missing")

	objectCmd.AddCommand(objectCreateCmd)
	objectCmd.AddCommand(objectDeleteCmd)
	objectCmd.AddCommand(objectListCmd)
}

// ObjectFile is the YAML layout consumed by "object create -f"
type ObjectFile struct {
	Templates []string       `yaml:"templates,omitempty"`
	Attrs     map[string]any `yaml:"attrs"`
}

type runtimeEnv struct {
	manager *runtimeconfig.Manager
	index   storage.Store
	broker  *events.Broker
}

func newRuntimeEnv(cmd *cobra.Command) (*runtimeEnv, error) {
	dataDir, _ := cmd.Flags().GetString("data-dir")

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	index, err := storage.NewBoltStore(dataDir)
	if err != nil {
		return nil, err
	}

	broker := events.NewBroker()
	broker.Start()

	reg := objects.NewRegistry(broker)

	pkgs := confpkg.NewStore(dataDir, broker)
	pkgs.SetIndex(index)

	env := &runtimeEnv{
		manager: runtimeconfig.NewManager(&runtimeconfig.Config{
			Packages: pkgs,
			Types:    types.DefaultRegistry(),
			Objects:  reg,
			Graph:    depgraph.New(),
			Index:    index,
			Notifier: runtimeconfig.NewBrokerNotifier(broker),
		}),
		index:  index,
		broker: broker,
	}

	return env, nil
}

func (e *runtimeEnv) close() {
	e.broker.Stop()
	e.index.Close()
}

func printDiagnostics(diag *runtimeconfig.Diagnostics) {
	for _, msg := range diag.Errors {
		fmt.Fprintf(os.Stderr, "  - %s\n", msg)
	}
}

func runObjectCreate(cmd *cobra.Command, args []string) error {
	typeName, _ := cmd.Flags().GetString("type")
	fullName, _ := cmd.Flags().GetString("name")
	filename, _ := cmd.Flags().GetString("file")
	templates, _ := cmd.Flags().GetStringArray("template")
	ignoreOnError, _ := cmd.Flags().GetBool("ignore-on-error")

	env, err := newRuntimeEnv(cmd)
	if err != nil {
		return err
	}
	defer env.close()

	t, ok := env.manager.Types().Lookup(typeName)
	if !ok {
		return fmt.Errorf("unknown object type %q", typeName)
	}

	var file ObjectFile
	if filename != "" {
		data, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		if err := yaml.Unmarshal(data, &file); err != nil {
			return fmt.Errorf("failed to parse YAML: %w", err)
		}
	}
	templates = append(file.Templates, templates...)

	diag := &runtimeconfig.Diagnostics{}
	if err := env.manager.CreateObject(t, fullName, ignoreOnError, templates, types.Attributes(file.Attrs), diag, nil); err != nil {
		printDiagnostics(diag)
		return fmt.Errorf("failed to create object %q", fullName)
	}

	fmt.Printf("✓ Created object '%s' of type '%s'\n", fullName, typeName)
	return nil
}

func runObjectDelete(cmd *cobra.Command, args []string) error {
	typeName, _ := cmd.Flags().GetString("type")
	fullName, _ := cmd.Flags().GetString("name")
	cascade, _ := cmd.Flags().GetBool("cascade")

	env, err := newRuntimeEnv(cmd)
	if err != nil {
		return err
	}
	defer env.close()

	t, ok := env.manager.Types().Lookup(typeName)
	if !ok {
		return fmt.Errorf("unknown object type %q", typeName)
	}

	// Rehydrate the object from the index; the CLI runs outside the node
	// process and has no live registry.
	rec, err := env.index.GetObject(typeName, fullName)
	if err != nil {
		return err
	}

	obj := objects.New(t, rec.FullName, confpkg.APIPackage, rec.Path, types.Attributes{"version": rec.Version})
	if err := env.manager.Objects().Register(obj); err != nil {
		return err
	}

	diag := &runtimeconfig.Diagnostics{}
	if err := env.manager.DeleteObject(obj, cascade, diag, nil); err != nil {
		printDiagnostics(diag)
		return fmt.Errorf("failed to delete object %q", fullName)
	}

	fmt.Printf("✓ Deleted object '%s' of type '%s'\n", fullName, typeName)
	return nil
}

func runObjectList(cmd *cobra.Command, args []string) error {
	orphans, _ := cmd.Flags().GetBool("orphans")

	env, err := newRuntimeEnv(cmd)
	if err != nil {
		return err
	}
	defer env.close()

	var recs []*storage.ObjectRecord
	if orphans {
		recs, err = env.index.ListMissingFiles()
	} else {
		recs, err = env.index.ListObjects()
	}
	if err != nil {
		return err
	}

	if len(recs) == 0 {
		if orphans {
			fmt.Println("No orphaned records.")
		} else {
			fmt.Println("No runtime objects.")
		}
		return nil
	}

	fmt.Printf("%-20s %-40s %s\n", "TYPE", "NAME", "VERSION")
	for _, rec := range recs {
		fmt.Printf("%-20s %-40s %.3f\n", rec.Type, rec.FullName, rec.Version)
	}
	return nil
}

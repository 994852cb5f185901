package cmd

import (
	"bytes"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/df07/go-adaptive-pathtracer/pkg/scene"
)

func formatSceneList(scenes []scene.SceneInfo) string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"ID", "Name", "Type", "Description"})
	for _, info := range scenes {
		table.Append([]string{info.ID, info.DisplayName, info.Type, info.Description})
	}
	table.Render()
	return buf.String()
}

// ListScenes prints the builtin scenes and the scene files found in the
// scene directory. With --export it writes the selected scene as a YAML
// scene file instead.
func ListScenes(ctx *cli.Context) error {
	if err := setupLogging(ctx); err != nil {
		return err
	}

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	if name := ctx.String("export"); name != "" {
		return exportScene(name, cfg.SceneOptions(), ctx.String("out"))
	}

	scenes, err := scene.ListAllScenes(cfg.Scene.Directory)
	if err != nil {
		return err
	}
	fmt.Print(formatSceneList(scenes))
	return nil
}

func exportScene(name string, opts scene.Options, out string) error {
	s, err := scene.Resolve(name, opts)
	if err != nil {
		return err
	}

	data, err := scene.Marshal(s, fmt.Sprintf("exported from %s", name))
	if err != nil {
		return err
	}

	if out == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(out, data, 0644); err != nil {
		return fmt.Errorf("error writing scene file: %w", err)
	}
	logger.Noticef("exported %d entities of %q to %s", s.Len(), name, out)
	return nil
}

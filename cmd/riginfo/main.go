// riginfo is a CLI utility for inspecting animated glTF rigs.
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/davecgh/go-spew/spew"

	"github.com/kverness/armature/internal/engine/model"
)

var spewConfig *spew.ConfigState

func init() {
	spewConfig = spew.NewDefaultConfig()
	spewConfig.DisableCapacities = true
	spewConfig.DisablePointerAddresses = true
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "info":
		cmdInfo(args)
	case "nodes", "tree":
		cmdNodes(args)
	case "channels", "anim":
		cmdChannels(args)
	case "meshes":
		cmdMeshes(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`riginfo - animated rig inspection utility

Usage:
  riginfo <command> [options] <model.gltf|model.glb>

Commands:
  info <model>                Show summary: nodes, meshes, clips, bounds
  nodes <model>               Print the node hierarchy
  channels [-verbose] <model> List animation channels and key counts
  meshes [-verbose] <model>   List meshes with vertex and bone counts

Examples:
  riginfo info character.glb
  riginfo nodes character.glb
  riginfo channels -verbose walk.gltf`)
}

func loadDocument(path string) *model.Document {
	doc, err := model.ImportGLTF(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return doc
}

func cmdInfo(args []string) {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	verbose := fs.Bool("verbose", false, "Dump the full node table")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: riginfo info <model.gltf>")
		os.Exit(1)
	}

	doc := loadDocument(fs.Arg(0))

	skinned := 0
	verts, tris := 0, 0
	for i := range doc.Meshes {
		if doc.Meshes[i].Skinned() {
			skinned++
		}
		verts += len(doc.Meshes[i].Vertices)
		tris += len(doc.Meshes[i].Indices) / 3
	}

	animated := 0
	for _, ch := range doc.Channels {
		if !ch.Empty() {
			animated++
		}
	}

	b := doc.Bounds()

	fmt.Printf("Model:    %s\n", doc.Name)
	fmt.Printf("Nodes:    %d (%d roots, %d animated)\n", len(doc.Nodes), len(doc.Roots), animated)
	fmt.Printf("Meshes:   %d (%d skinned), %d vertices, %d triangles\n", len(doc.Meshes), skinned, verts, tris)
	fmt.Printf("Bounds:   (%.2f, %.2f, %.2f) .. (%.2f, %.2f, %.2f)\n",
		b.Min[0], b.Min[1], b.Min[2], b.Max[0], b.Max[1], b.Max[2])

	if doc.ClipCount == 0 {
		fmt.Println("Clips:    none")
	} else {
		start, end := clipSpan(doc)
		fmt.Printf("Clips:    %d, loaded %s: %.2fs .. %.2fs\n", doc.ClipCount, clipName(doc), start, end)
	}

	if *verbose {
		fmt.Println()
		fmt.Print(spewConfig.Sdump(doc.Nodes))
	}
}

func cmdNodes(args []string) {
	fs := flag.NewFlagSet("nodes", flag.ExitOnError)
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: riginfo nodes <model.gltf>")
		os.Exit(1)
	}

	doc := loadDocument(fs.Arg(0))

	meshCount := make(map[string]int)
	for i := range doc.Meshes {
		if doc.Meshes[i].AttachTo != "" {
			meshCount[doc.Meshes[i].AttachTo]++
		}
	}

	for _, r := range doc.Roots {
		printNode(doc, r, 0, meshCount)
	}
	fmt.Printf("\n%d nodes, * = animated\n", len(doc.Nodes))
}

func printNode(doc *model.Document, idx, depth int, meshCount map[string]int) {
	if idx < 0 || idx >= len(doc.Nodes) {
		return
	}
	n := &doc.Nodes[idx]

	marker := ""
	if ch, ok := doc.Channels[n.Name]; ok && !ch.Empty() {
		marker = " *"
	}
	if c := meshCount[n.Name]; c > 0 {
		marker += fmt.Sprintf(" [%d mesh]", c)
	}

	fmt.Printf("%s%s%s\n", strings.Repeat("  ", depth), n.Name, marker)
	for _, c := range n.Children {
		printNode(doc, c, depth+1, meshCount)
	}
}

func cmdChannels(args []string) {
	fs := flag.NewFlagSet("channels", flag.ExitOnError)
	verbose := fs.Bool("verbose", false, "Dump every keyframe")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: riginfo channels [-verbose] <model.gltf>")
		os.Exit(1)
	}

	doc := loadDocument(fs.Arg(0))

	if len(doc.Channels) == 0 {
		fmt.Println("No animation channels")
		return
	}

	fmt.Printf("Clip %s (%d clips in asset)\n\n", clipName(doc), doc.ClipCount)

	names := make([]string, 0, len(doc.Channels))
	for name := range doc.Channels {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		ch := doc.Channels[name]
		start, end := ch.Span()
		fmt.Printf("%-24s T:%-4d R:%-4d S:%-4d  %.2fs .. %.2fs\n",
			name, len(ch.Translation), len(ch.Rotation), len(ch.Scale), start, end)
		if *verbose {
			fmt.Print(spewConfig.Sdump(ch))
		}
	}
}

func cmdMeshes(args []string) {
	fs := flag.NewFlagSet("meshes", flag.ExitOnError)
	verbose := fs.Bool("verbose", false, "Dump materials and bone tables")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: riginfo meshes [-verbose] <model.gltf>")
		os.Exit(1)
	}

	doc := loadDocument(fs.Arg(0))

	if len(doc.Meshes) == 0 {
		fmt.Println("No meshes")
		return
	}

	for i := range doc.Meshes {
		m := &doc.Meshes[i]

		kind := "static"
		if m.Skinned() {
			kind = fmt.Sprintf("skinned (%d bones)", len(m.BoneNames))
		}
		fmt.Printf("%-24s %7d verts %7d tris  %s\n", m.Name, len(m.Vertices), len(m.Indices)/3, kind)

		if m.AttachTo != "" {
			fmt.Printf("    attached to: %s\n", m.AttachTo)
		}
		if m.Material.Texture != "" {
			fmt.Printf("    texture:     %s\n", m.Material.Texture)
		}

		if *verbose {
			fmt.Print(spewConfig.Sdump(m.Material))
			if m.Skinned() {
				fmt.Print(spewConfig.Sdump(m.BoneNames))
			}
		}
	}
}

func clipName(doc *model.Document) string {
	if doc.ClipName == "" {
		return "(unnamed)"
	}
	return doc.ClipName
}

// clipSpan merges every channel's time range.
func clipSpan(doc *model.Document) (start, end float64) {
	first := true
	for _, ch := range doc.Channels {
		s, e := ch.Span()
		if first {
			start, end = s, e
			first = false
			continue
		}
		if s < start {
			start = s
		}
		if e > end {
			end = e
		}
	}
	return start, end
}

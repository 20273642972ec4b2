// Package views renders inventory listings as fixed-width text tables.
package views

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"pvelist/models"
)

const (
	maxNameWidth  = 35
	truncatedName = 32
	notAvailable  = "N/A"
)

var rule = strings.Repeat("-", 80)

// SortByVMID returns a copy of resources ordered by ascending vmid. Records
// with equal ids keep their input order.
func SortByVMID(resources []models.Resource) []models.Resource {
	sorted := make([]models.Resource, len(resources))
	copy(sorted, resources)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].VMID < sorted[j].VMID
	})
	return sorted
}

// DisplayName shortens names longer than 35 characters to 32 plus "...".
func DisplayName(name string) string {
	runes := []rune(name)
	if len(runes) > maxNameWidth {
		return string(runes[:truncatedName]) + "..."
	}
	return name
}

func orNA(value string) string {
	if value == "" {
		return notAvailable
	}
	return value
}

// vmidCell prints a missing vmid as N/A. It still sorts as 0.
func vmidCell(vmid int) string {
	if vmid == 0 {
		return notAvailable
	}
	return strconv.Itoa(vmid)
}

func writeHeader(w io.Writer) {
	fmt.Fprintf(w, "| %-5s | %-8s | %-10s | %-10s | %-35s |\n", "VMID", "Type", "Status", "Node", "Name")
	fmt.Fprintln(w, rule)
}

func writeRows(w io.Writer, resources []models.Resource) {
	for _, r := range SortByVMID(resources) {
		fmt.Fprintf(w, "| %-5s | %-8s | %-10s | %-10s | %-35s |\n",
			vmidCell(r.VMID), orNA(string(r.Type)), orNA(r.Status), orNA(r.Node), DisplayName(orNA(r.Name)))
	}
}

// RenderTable writes the sorted table followed by the resource count.
func RenderTable(w io.Writer, resources []models.Resource) {
	writeHeader(w)
	writeRows(w, resources)
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Total accessible resources: %d\n", len(resources))
}

// RenderGrouped writes one table per folder, folders in name order.
func RenderGrouped(w io.Writer, resources []models.Resource) {
	groups := make(map[string][]models.Resource)
	for _, r := range resources {
		folder := r.Folder
		if folder == "" {
			folder = models.DefaultFolder
		}
		groups[folder] = append(groups[folder], r)
	}

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	banner := strings.Repeat("=", 80)
	for _, name := range names {
		fmt.Fprintln(w, banner)
		fmt.Fprintf(w, "=== FOLDER: %s (Count: %d) ===\n", name, len(groups[name]))
		fmt.Fprintln(w, banner)
		writeHeader(w)
		writeRows(w, groups[name])
		fmt.Fprintln(w, rule)
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "Total accessible resources: %d\n", len(resources))
}

// RenderNodes writes the cluster nodes with their load.
func RenderNodes(w io.Writer, nodes []models.Node) {
	sorted := make([]models.Node, len(nodes))
	copy(sorted, nodes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Node < sorted[j].Node
	})

	fmt.Fprintf(w, "| %-15s | %-8s | %-7s | %-23s |\n", "Node", "Status", "CPU", "Memory")
	fmt.Fprintln(w, strings.Repeat("-", 66))
	for _, n := range sorted {
		fmt.Fprintf(w, "| %-15s | %-8s | %6.1f%% | %-23s |\n",
			orNA(n.Node), orNA(n.Status), n.CPUPercent(), memory(n))
	}
	fmt.Fprintln(w, strings.Repeat("-", 66))
	fmt.Fprintf(w, "Total nodes: %d\n", len(nodes))
}

func memory(n models.Node) string {
	used, total := n.MemoryGiB()
	return fmt.Sprintf("%.1f / %.1f GiB", used, total)
}

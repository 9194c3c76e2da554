package markov

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`)

// WriteDOT writes the model as an undirected Graphviz graph:
//
//	graph G {
//	start [shape = Msquare];
//	end [shape = Msquare];
//	1 [label = "token"];
//	start -- 1 [label = "2"];
//	1 -- end [label = "2"];
//	}
//
// Every node gets one vertex statement labelled with its value, and every
// recorded transition (from Start and from each node) gets one edge statement
// labelled with its count. Statements are ordered by id with End last.
func (m *Model) WriteDOT(w io.Writer) error {
	bw := bufio.NewWriter(w)

	bw.WriteString("graph G {\n")
	bw.WriteString(StartLabel + " [shape = Msquare];\n")
	bw.WriteString(EndLabel + " [shape = Msquare];\n")

	for _, node := range m.nodes {
		bw.WriteString(strconv.Itoa(node.ID))
		bw.WriteString(` [label = "`)
		dotEscaper.WriteString(bw, node.Value)
		bw.WriteString("\"];\n")
	}

	for _, src := range m.sources() {
		for _, tr := range m.edges[src].Transitions() {
			bw.WriteString(src.String())
			bw.WriteString(" -- ")
			bw.WriteString(tr.To.String())
			bw.WriteString(` [label = "`)
			bw.WriteString(strconv.Itoa(tr.Freq))
			bw.WriteString("\"];\n")
		}
	}

	bw.WriteString("}\n")
	return bw.Flush()
}

// DOT returns the output of WriteDOT as a string.
func (m *Model) DOT() string {
	var sb strings.Builder
	_ = m.WriteDOT(&sb)
	return sb.String()
}

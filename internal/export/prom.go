package export

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/HaPhanBaoMinh/clusterrings/internal/domain"
	"github.com/HaPhanBaoMinh/clusterrings/internal/layout"
)

const namespace = "clusterrings"

// Registry builds a registry holding the summary and per-node gauges of
// snap.
func Registry(snap *domain.ClusterSnapshot, c *layout.Chart) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	gauge := func(name, help string, v float64) {
		g := prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: name, Help: help})
		g.Set(v)
		reg.MustRegister(g)
	}
	s := c.Summary
	gauge("nodes", "Number of nodes in the snapshot.", float64(s.Nodes))
	gauge("nodes_active", "Nodes with at least one running VM.", float64(s.ActiveNodes))
	gauge("vms", "Number of VMs, running or stopped.", float64(s.VMs))
	gauge("vms_running", "Number of running VMs.", float64(s.RunningVMs))
	gauge("cpu_used_cores", "CPU cores assigned across the cluster.", s.CPUUsed)
	gauge("cpu_overcommit_percent", "CPU assigned above physical capacity, in percent.", s.CPUOvercommit)
	gauge("memory_usage_percent", "Cluster memory usage, in percent.", s.MemUsage)
	gauge("memory_free_gigabytes", "Free memory across the cluster.", s.MemFree)

	labels := []string{"server", "node", "resource"}
	util := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace, Name: "node_utilization_percent", Help: "Used over capacity, in percent.",
	}, labels)
	used := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace, Name: "node_used", Help: "Used quantity in the resource unit.",
	}, labels)
	free := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace, Name: "node_free", Help: "Free quantity in the resource unit.",
	}, labels)
	critical := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace, Name: "node_critical", Help: "1 when the node is overcommitted or out of disk.",
	}, labels)
	reg.MustRegister(util, used, free, critical)

	for _, n := range snap.Nodes() {
		for _, rt := range domain.ResourceTypes {
			q := n.Resource(rt)
			lv := []string{n.Server, n.Name, strings.ToLower(rt.String())}
			pct := layout.Utilization(q.Used, q.Capacity)
			util.WithLabelValues(lv...).Set(pct)
			used.WithLabelValues(lv...).Set(q.Used)
			free.WithLabelValues(lv...).Set(q.Free)
			crit := 0.0
			if layout.IsCritical(rt, pct, q.Free) {
				crit = 1
			}
			critical.WithLabelValues(lv...).Set(crit)
		}
	}
	return reg
}

// Prometheus writes a node_exporter textfile collector file.
func Prometheus(path string, snap *domain.ClusterSnapshot, c *layout.Chart) error {
	return prometheus.WriteToTextfile(path, Registry(snap, c))
}

package k8s

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	metricsv1beta1 "k8s.io/metrics/pkg/apis/metrics/v1beta1"
	metricsclient "k8s.io/metrics/pkg/client/clientset/versioned"

	"github.com/HaPhanBaoMinh/clusterrings/internal/domain"
)

const (
	UsageRequests = "requests"
	UsageMetrics  = "metrics"

	gib = 1 << 30
)

// Repo presents a Kubernetes cluster as a snapshot: the kube context is the
// server, nodes are nodes and pods play the part of VMs.
type Repo struct {
	core    kubernetes.Interface
	metrics metricsclient.Interface
	server  string
	usage   string
	now     func() time.Time
}

func New(kubeconfigPath, contextName, usage string) (*Repo, error) {
	cfg, server, err := loadRESTConfig(kubeconfigPath, contextName)
	if err != nil {
		return nil, err
	}
	cfg.QPS = 30
	cfg.Burst = 60
	core, err := kubernetes.NewForConfig(cfg)
	if err != nil {
		return nil, err
	}
	m, err := metricsclient.NewForConfig(cfg)
	if err != nil {
		return nil, err
	}
	return NewForClients(core, m, server, usage), nil
}

// NewForClients wraps existing clientsets. metrics may be nil when usage is
// requests.
func NewForClients(core kubernetes.Interface, metrics metricsclient.Interface, server, usage string) *Repo {
	if usage == "" {
		usage = UsageRequests
	}
	return &Repo{core: core, metrics: metrics, server: server, usage: usage, now: time.Now}
}

func loadRESTConfig(kubeconfigPath, contextName string) (*rest.Config, string, error) {
	if cfg, err := rest.InClusterConfig(); err == nil {
		return cfg, "in-cluster", nil
	}
	loadingRules := &clientcmd.ClientConfigLoadingRules{ExplicitPath: kubeconfigPath}
	overrides := &clientcmd.ConfigOverrides{}
	if contextName != "" {
		overrides.CurrentContext = contextName
	}
	cc := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(loadingRules, overrides)
	cfg, err := cc.ClientConfig()
	if err != nil {
		return nil, "", fmt.Errorf("kubeconfig: %w", err)
	}
	server := contextName
	if server == "" {
		if raw, err := cc.RawConfig(); err == nil {
			server = raw.CurrentContext
		}
	}
	if server == "" {
		server = cfg.Host
	}
	return cfg, server, nil
}

func (r *Repo) Name() string { return "kubernetes:" + r.server }

func (r *Repo) Load(ctx context.Context) (*domain.ClusterSnapshot, error) {
	nodes, err := r.core.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("list nodes: %w", err)
	}
	pods, err := r.core.CoreV1().Pods("").List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("list pods: %w", err)
	}

	byNode := map[string][]corev1.Pod{}
	for _, p := range pods.Items {
		if p.Spec.NodeName != "" {
			byNode[p.Spec.NodeName] = append(byNode[p.Spec.NodeName], p)
		}
	}

	nodeUsage, podUsage := r.liveUsage(ctx)

	srv := domain.Server{ID: r.server}
	for _, n := range nodes.Items {
		srv.Nodes = append(srv.Nodes, r.nodeStats(n, byNode[n.Name], nodeUsage[n.Name], podUsage))
	}
	return &domain.ClusterSnapshot{
		Timestamp: r.now().UTC().Format(time.RFC3339),
		Servers:   []domain.Server{srv},
	}, nil
}

// liveUsage pulls metrics.k8s.io usage when configured. Without
// metrics-server both maps are empty and requests are used instead.
func (r *Repo) liveUsage(ctx context.Context) (map[string]corev1.ResourceList, map[string]corev1.ResourceList) {
	nodeUsage := map[string]corev1.ResourceList{}
	podUsage := map[string]corev1.ResourceList{}
	if r.usage != UsageMetrics || r.metrics == nil {
		return nodeUsage, podUsage
	}

	nms, err := r.metrics.MetricsV1beta1().NodeMetricses().List(ctx, metav1.ListOptions{})
	if err != nil {
		log.WithError(err).Warn("node metrics unavailable, falling back to requests")
		nms = &metricsv1beta1.NodeMetricsList{}
	}
	for _, m := range nms.Items {
		nodeUsage[m.Name] = m.Usage
	}

	pms, err := r.metrics.MetricsV1beta1().PodMetricses("").List(ctx, metav1.ListOptions{})
	if err != nil {
		log.WithError(err).Warn("pod metrics unavailable, falling back to requests")
		pms = &metricsv1beta1.PodMetricsList{}
	}
	for _, m := range pms.Items {
		total := corev1.ResourceList{}
		for _, c := range m.Containers {
			addResources(total, c.Usage)
		}
		podUsage[m.Namespace+"/"+m.Name] = total
	}
	return nodeUsage, podUsage
}

func (r *Repo) nodeStats(n corev1.Node, pods []corev1.Pod, live corev1.ResourceList, podUsage map[string]corev1.ResourceList) domain.NodeStats {
	alloc := n.Status.Allocatable
	ns := domain.NodeStats{Server: r.server, Name: n.Name}

	requested := corev1.ResourceList{}
	for _, p := range pods {
		key := p.Namespace + "/" + p.Name
		req := podRequests(p)
		vm := domain.VMDetail{
			Name:   key,
			Status: domain.VMStopped,
			CPU:    cores(req, corev1.ResourceCPU),
			Memory: gigabytes(req, corev1.ResourceMemory),
			Disk:   gigabytes(req, corev1.ResourceEphemeralStorage),
		}
		if u, ok := podUsage[key]; ok {
			vm.CPU = cores(u, corev1.ResourceCPU)
			vm.Memory = gigabytes(u, corev1.ResourceMemory)
		}
		if p.Status.Phase == corev1.PodRunning {
			vm.Status = domain.VMRunning
			ns.VMsRunning++
			addResources(requested, req)
		} else {
			ns.VMsStopped++
		}
		ns.VMs = append(ns.VMs, vm)
	}

	ns.CPU = quantity(cores(alloc, corev1.ResourceCPU), cores(requested, corev1.ResourceCPU))
	ns.Memory = quantity(gigabytes(alloc, corev1.ResourceMemory), gigabytes(requested, corev1.ResourceMemory))
	ns.Disk = quantity(gigabytes(alloc, corev1.ResourceEphemeralStorage), gigabytes(requested, corev1.ResourceEphemeralStorage))
	if live != nil {
		if _, ok := live[corev1.ResourceCPU]; ok {
			ns.CPU = quantity(ns.CPU.Capacity, cores(live, corev1.ResourceCPU))
		}
		if _, ok := live[corev1.ResourceMemory]; ok {
			ns.Memory = quantity(ns.Memory.Capacity, gigabytes(live, corev1.ResourceMemory))
		}
	}
	return ns
}

// podRequests sums the requests of every regular container.
func podRequests(p corev1.Pod) corev1.ResourceList {
	total := corev1.ResourceList{}
	for _, c := range p.Spec.Containers {
		addResources(total, c.Resources.Requests)
	}
	return total
}

func addResources(dst, src corev1.ResourceList) {
	for res, q := range src {
		if cur, ok := dst[res]; ok {
			cur.Add(q)
			dst[res] = cur
		} else {
			dst[res] = q.DeepCopy()
		}
	}
}

func quantity(capacity, used float64) domain.Quantity {
	return domain.Quantity{Capacity: capacity, Used: used, Free: capacity - used}
}

func cores(l corev1.ResourceList, name corev1.ResourceName) float64 {
	q, ok := l[name]
	if !ok {
		return 0
	}
	return float64(q.MilliValue()) / 1000
}

func gigabytes(l corev1.ResourceList, name corev1.ResourceName) float64 {
	q, ok := l[name]
	if !ok {
		return 0
	}
	return float64(q.Value()) / gib
}

package ml

// ClusterInfo is the business-facing description of a product group.
type ClusterInfo struct {
	Name              string `json:"cluster_name"`
	Description       string `json:"description"`
	RecommendedAction string `json:"recommended_action"`
}

// Raw cluster ids are model-specific and unstable across retrains; these
// tables pin the trained ids to stable business labels.
var kmeansClusters = map[int]ClusterInfo{
	0: {
		Name:              "Steady Sellers",
		Description:       "Consistent mid-range revenue with a stable repeat customer base.",
		RecommendedAction: "Maintain stock levels and monitor for seasonal drift.",
	},
	1: {
		Name:              "High-Value Anchors",
		Description:       "Top revenue products bought across many transactions and customers.",
		RecommendedAction: "Protect availability and feature prominently in promotions.",
	},
	2: {
		Name:              "Long-Tail Niche",
		Description:       "Low volume and revenue, purchased by a small set of customers.",
		RecommendedAction: "Review margins; consider bundling or delisting.",
	},
	3: {
		Name:              "Volume Drivers",
		Description:       "High quantity sold at low unit revenue, broad customer reach.",
		RecommendedAction: "Use as traffic drivers; watch discount depth.",
	},
}

var dbscanClusters = map[int]ClusterInfo{
	0: {
		Name:              "Core Catalog",
		Description:       "Dense mass of products with typical revenue and purchase patterns.",
		RecommendedAction: "Manage with standard replenishment rules.",
	},
	1: {
		Name:              "Seasonal Spikers",
		Description:       "Products whose sales concentrate in short high-intensity bursts.",
		RecommendedAction: "Align inventory with the seasonal calendar.",
	},
}

// unclassified is the soft-fail label for ids outside the trained range,
// including DBSCAN noise points.
var unclassified = ClusterInfo{
	Name:              "Unclassified",
	Description:       "Product does not match any known group profile.",
	RecommendedAction: "Collect more sales history before acting.",
}

// DescribeCluster maps a raw cluster id to its business label. Unmapped ids
// degrade to the generic Unclassified label rather than failing: outliers are
// an expected output of the underlying unsupervised fit.
func DescribeCluster(variant string, id int) ClusterInfo {
	var table map[int]ClusterInfo
	switch variant {
	case VariantKMeans:
		table = kmeansClusters
	case VariantDBSCAN:
		table = dbscanClusters
	default:
		return unclassified
	}
	if info, ok := table[id]; ok {
		return info
	}
	return unclassified
}

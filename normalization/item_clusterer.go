package normalization

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"costdb/internal/domain/models"
	"costdb/normalization/algorithms"
)

// unidentifiedKeyPrefix ключ реестра для заказов без описания
const unidentifiedKeyPrefix = "#unidentified:"

// similarityEpsilon допуск при сравнении значений сходства на равенство
const similarityEpsilon = 1e-12

// ClustererConfig параметры кластеризации
type ClustererConfig struct {
	SimilarityThreshold float64
	Workers             int
	UseStemming         bool
	RemoveStopWords     bool
}

// ClusteringStats статистика одного прогона кластеризации
type ClusteringStats struct {
	Orders            int `json:"orders"`
	UniqueKeys        int `json:"unique_keys"`
	Clusters          int `json:"clusters"`
	Singletons        int `json:"singletons"`
	EmptyDescriptions int `json:"empty_descriptions"`
}

// ClusteringResult результат стандартизации
type ClusteringResult struct {
	Items     []models.StandardizedItem
	Canonical []models.CanonicalItem
	Stats     ClusteringStats
}

// ItemClusterer группирует варианты описаний в канонические позиции
type ItemClusterer struct {
	normalizer *algorithms.TextNormalizer
	similarity *algorithms.JaccardIndex
	categories *CategoryDetector
	codes      CodeAssigner
	threshold  float64
	workers    int
	logger     *slog.Logger
}

// keyGroup заказы с одинаковым нормализованным описанием
type keyGroup struct {
	key     string
	tokens  []string
	orders  []int
	cluster int
	score   float64
}

// cluster кластер ключей с представителем
type cluster struct {
	repKey    string
	repTokens []string
	name      string
	members   int
	code      string
	category  *string
}

// NewItemClusterer создает кластеризатор. codes может быть nil - тогда коды выдаются по порядку.
func NewItemClusterer(cfg ClustererConfig, codes CodeAssigner, logger *slog.Logger) *ItemClusterer {
	normalizer := algorithms.NewTextNormalizer(cfg.RemoveStopWords)
	if cfg.UseStemming {
		normalizer.WithStemmer(algorithms.NewEnglishStemmer())
	}
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ItemClusterer{
		normalizer: normalizer,
		similarity: algorithms.NewDimensionAwareJaccard(),
		categories: NewCategoryDetector(),
		codes:      codes,
		threshold:  cfg.SimilarityThreshold,
		workers:    workers,
		logger:     logger,
	}
}

// Normalizer возвращает нормализатор, которым пользуется кластеризатор
func (ic *ItemClusterer) Normalizer() *algorithms.TextNormalizer {
	return ic.normalizer
}

// Standardize сопоставляет каждый заказ ровно одной канонической позиции.
// Для одинакового набора заказов и конфигурации результат побайтно совпадает.
func (ic *ItemClusterer) Standardize(ctx context.Context, orders []models.PurchaseOrder) (*ClusteringResult, error) {
	codes := ic.codes
	if codes == nil {
		codes = NewSequentialCodes()
	}

	tokens, err := ic.normalizeAll(ctx, orders)
	if err != nil {
		return nil, err
	}

	groups, empty := groupByKey(orders, tokens)
	stats := ClusteringStats{
		Orders:            len(orders),
		UniqueKeys:        len(groups),
		EmptyDescriptions: len(empty),
	}

	clusters := ic.assignClusters(groups, orders)

	// Коды и категории выдаются в порядке создания кластеров
	for _, c := range clusters {
		code, err := codes.AssignCode(c.repKey)
		if err != nil {
			return nil, fmt.Errorf("failed to assign item code for %q: %w", c.repKey, err)
		}
		c.code = code
		c.category = ic.categories.Detect(c.name)
	}

	items := make([]models.StandardizedItem, 0, len(orders))
	canonical := make([]models.CanonicalItem, 0, len(clusters)+len(empty))

	for _, c := range clusters {
		canonical = append(canonical, models.CanonicalItem{
			ItemCode:          c.code,
			CanonicalItemName: c.name,
			NormalizedKey:     c.repKey,
			MemberCount:       c.members,
			Category:          c.category,
		})
		if c.members == 1 {
			stats.Singletons++
		}
	}

	for _, g := range groups {
		c := clusters[g.cluster]
		for _, idx := range g.orders {
			items = append(items, models.StandardizedItem{
				POID:              orders[idx].POID,
				ItemCode:          c.code,
				CanonicalItemName: c.name,
				ConfidenceScore:   g.score,
				Category:          c.category,
			})
		}
	}

	// Заказ без распознанных токенов образует собственный кластер с нулевой уверенностью
	for _, idx := range empty {
		order := orders[idx]
		code, err := codes.AssignCode(unidentifiedKeyPrefix + order.POID)
		if err != nil {
			return nil, fmt.Errorf("failed to assign item code for %s: %w", order.POID, err)
		}
		name := fallbackName(order)
		canonical = append(canonical, models.CanonicalItem{
			ItemCode:          code,
			CanonicalItemName: name,
			MemberCount:       1,
		})
		items = append(items, models.StandardizedItem{
			POID:              order.POID,
			ItemCode:          code,
			CanonicalItemName: name,
			ConfidenceScore:   0,
		})
		stats.Singletons++
	}

	stats.Clusters = len(canonical)

	sort.Slice(items, func(i, j int) bool { return items[i].POID < items[j].POID })
	sort.Slice(canonical, func(i, j int) bool { return canonical[i].ItemCode < canonical[j].ItemCode })

	ic.logger.Info("Standardization completed",
		"orders", stats.Orders,
		"unique_keys", stats.UniqueKeys,
		"clusters", stats.Clusters,
		"singletons", stats.Singletons,
		"empty_descriptions", stats.EmptyDescriptions,
	)

	return &ClusteringResult{Items: items, Canonical: canonical, Stats: stats}, nil
}

// normalizeAll нормализует описания параллельно; результаты пишутся по индексу
func (ic *ItemClusterer) normalizeAll(ctx context.Context, orders []models.PurchaseOrder) ([][]string, error) {
	tokens := make([][]string, len(orders))
	if len(orders) == 0 {
		return tokens, nil
	}

	chunk := (len(orders) + ic.workers - 1) / ic.workers
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ic.workers)

	for start := 0; start < len(orders); start += chunk {
		end := min(start+chunk, len(orders))
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				tokens[i] = ic.normalizer.Tokens(orders[i].ItemDescription)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("normalization interrupted: %w", err)
	}
	return tokens, nil
}

// groupByKey группирует заказы по нормализованному ключу и упорядочивает группы:
// сначала по числу заказов (по убыванию), затем по ключу
func groupByKey(orders []models.PurchaseOrder, tokens [][]string) ([]*keyGroup, []int) {
	byKey := make(map[string]*keyGroup)
	var empty []int

	for i := range orders {
		if len(tokens[i]) == 0 {
			empty = append(empty, i)
			continue
		}
		key := strings.Join(tokens[i], " ")
		g, ok := byKey[key]
		if !ok {
			g = &keyGroup{key: key, tokens: tokens[i]}
			byKey[key] = g
		}
		g.orders = append(g.orders, i)
	}

	groups := make([]*keyGroup, 0, len(byKey))
	for _, g := range byKey {
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool {
		if len(groups[i].orders) != len(groups[j].orders) {
			return len(groups[i].orders) > len(groups[j].orders)
		}
		return groups[i].key < groups[j].key
	})

	sort.Slice(empty, func(i, j int) bool { return orders[empty[i]].POID < orders[empty[j]].POID })
	return groups, empty
}

// assignClusters распределяет группы по кластерам. Ключ сравнивается только с представителями
// кластеров, поэтому цепочки A~B~C не объединяют A и C через B.
func (ic *ItemClusterer) assignClusters(groups []*keyGroup, orders []models.PurchaseOrder) []*cluster {
	var clusters []*cluster
	index := algorithms.NewTokenIndex()

	for _, g := range groups {
		best := -1
		bestScore := 0.0

		for _, id := range index.Candidates(g.tokens) {
			c := clusters[id]
			score := ic.similarity.SimilarityTokens(g.tokens, c.repTokens)
			if score <= ic.threshold {
				continue
			}
			if best < 0 || score > bestScore+similarityEpsilon {
				best, bestScore = id, score
				continue
			}
			if math.Abs(score-bestScore) <= similarityEpsilon && preferCluster(c, clusters[best]) {
				best = id
			}
		}

		if best >= 0 {
			g.cluster = best
			g.score = clamp01(bestScore)
			clusters[best].members += len(g.orders)
			continue
		}

		clusters = append(clusters, &cluster{
			repKey:    g.key,
			repTokens: g.tokens,
			name:      canonicalName(g, orders),
			members:   len(g.orders),
		})
		g.cluster = len(clusters) - 1
		g.score = 1.0
		index.Add(g.cluster, g.tokens)
	}

	return clusters
}

// preferCluster правило выбора при равном сходстве: больше участников, затем меньшее имя
func preferCluster(candidate, current *cluster) bool {
	if candidate.members != current.members {
		return candidate.members > current.members
	}
	return candidate.name < current.name
}

// canonicalName самое частое исходное написание представителя (пробелы схлопнуты),
// при равенстве - лексикографически меньшее
func canonicalName(g *keyGroup, orders []models.PurchaseOrder) string {
	counts := make(map[string]int)
	for _, idx := range g.orders {
		counts[strings.Join(strings.Fields(orders[idx].ItemDescription), " ")]++
	}

	name := ""
	best := 0
	for candidate, count := range counts {
		if count > best || (count == best && candidate < name) {
			name, best = candidate, count
		}
	}
	return name
}

// fallbackName имя для описания без токенов: сам текст в нижнем регистре
// со схлопнутыми пробелами, а для пустого описания заглушка с po_id
func fallbackName(order models.PurchaseOrder) string {
	name := strings.Join(strings.Fields(strings.ToLower(order.ItemDescription)), " ")
	if name == "" {
		return "Unidentified item " + order.POID
	}
	return name
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

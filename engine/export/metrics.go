package export

import "context"

// NodeCounts returns node counts in the exported graph grouped by label.
func (e *Exporter) NodeCounts(ctx context.Context) (map[string]int64, error) {
	sess := e.opener.OpenSession(ctx)
	defer sess.Close(ctx)

	cypher := `MATCH (n) RETURN labels(n)[0] AS label, count(n) AS count`
	result, err := sess.Run(ctx, cypher, nil)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64)
	for result.Next(ctx) {
		rec := result.Record()
		label, ok1 := rec.Get("label")
		count, ok2 := rec.Get("count")
		if ok1 && ok2 {
			if l, ok := label.(string); ok {
				if c, ok := count.(int64); ok {
					counts[l] = c
				}
			}
		}
	}
	return counts, result.Err()
}

// RelationshipCounts returns relationship counts grouped by type.
func (e *Exporter) RelationshipCounts(ctx context.Context) (map[string]int64, error) {
	sess := e.opener.OpenSession(ctx)
	defer sess.Close(ctx)

	cypher := `MATCH ()-[r]->() RETURN type(r) AS rel, count(r) AS count`
	result, err := sess.Run(ctx, cypher, nil)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64)
	for result.Next(ctx) {
		rec := result.Record()
		rel, ok1 := rec.Get("rel")
		count, ok2 := rec.Get("count")
		if ok1 && ok2 {
			if r, ok := rel.(string); ok {
				if c, ok := count.(int64); ok {
					counts[r] = c
				}
			}
		}
	}
	return counts, result.Err()
}

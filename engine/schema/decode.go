package schema

// Decode validates the shape of one raw attribute record and converts it
// into a typed Record. The index is carried into any SchemaError so the
// external report generator can point back at the offending input line.
//
// Decode enforces the record contracts: a node requires kind/id/node_type,
// an edge requires kind/source/target/relationship, metadata requires
// model/version/units/coord_frame. Spatial triples, when present, must be
// exactly 3 numbers; path_xyz must be a list of such triples.
func Decode(index int, raw map[string]any) (Record, *SchemaError) {
	kind, _ := raw["kind"].(string)
	switch Kind(kind) {
	case KindNode:
		return decodeNode(index, raw)
	case KindEdge:
		return decodeEdge(index, raw)
	case KindMeta:
		return decodeMeta(index, raw)
	default:
		return nil, NewSchemaError(index, strField(raw, "id"), "kind", ErrUnknownKind)
	}
}

func decodeNode(index int, raw map[string]any) (*Node, *SchemaError) {
	id := strField(raw, "id")
	if id == "" {
		return nil, NewSchemaError(index, "", "id", ErrMissingField)
	}
	typ := NodeType(strField(raw, "node_type"))
	if typ == "" {
		return nil, NewSchemaError(index, id, "node_type", ErrMissingField)
	}
	if !ValidNodeTypes[typ] {
		return nil, NewSchemaError(index, id, "node_type", ErrUnknownNodeType)
	}

	n := &Node{
		ID:          id,
		Type:        typ,
		CanonicalID: strField(raw, "canonical_id"),
		Label:       strField(raw, "label"),
		Zone:        strField(raw, "anchor_zone"),
		Rail:        strField(raw, "rail"),
		Color:       strField(raw, "color"),
		Gauge:       strField(raw, "gauge"),
		Signal:      strField(raw, "signal"),
		Voltage:     strField(raw, "voltage"),
		Notes:       strField(raw, "notes"),
	}

	for _, f := range []struct {
		key string
		dst **Vec3
	}{
		{"anchor_xyz", &n.AnchorXYZ},
		{"anchor_ypr_deg", &n.AnchorYPR},
		{"bbox_m", &n.BBox},
	} {
		v, present := raw[f.key]
		if !present || v == nil {
			continue
		}
		triple, ok := vec3From(v)
		if !ok {
			return nil, NewSchemaError(index, id, f.key, ErrBadTriple)
		}
		*f.dst = &triple
	}

	if v, present := raw["path_xyz"]; present && v != nil {
		points, ok := pathFrom(v)
		if !ok {
			return nil, NewSchemaError(index, id, "path_xyz", ErrBadPath)
		}
		n.Path = points
	}

	return n, nil
}

func decodeEdge(index int, raw map[string]any) (*Edge, *SchemaError) {
	src := strField(raw, "source")
	if src == "" {
		return nil, NewSchemaError(index, "", "source", ErrMissingField)
	}
	dst := strField(raw, "target")
	if dst == "" {
		return nil, NewSchemaError(index, src, "target", ErrMissingField)
	}
	rel := Relationship(strField(raw, "relationship"))
	if rel == "" {
		return nil, NewSchemaError(index, src, "relationship", ErrMissingField)
	}
	if !ValidRelationships[rel] {
		return nil, NewSchemaError(index, src, "relationship", ErrUnknownRelationship)
	}
	return &Edge{
		Source: src,
		Target: dst,
		Rel:    rel,
		Notes:  strField(raw, "notes"),
	}, nil
}

func decodeMeta(index int, raw map[string]any) (*Metadata, *SchemaError) {
	m := &Metadata{
		Model:      strField(raw, "model"),
		Version:    strField(raw, "version"),
		Units:      strField(raw, "units"),
		CoordFrame: strField(raw, "coord_frame"),
	}
	for field, val := range map[string]string{
		"model": m.Model, "version": m.Version,
		"units": m.Units, "coord_frame": m.CoordFrame,
	} {
		if val == "" {
			return nil, NewSchemaError(index, m.Model, field, ErrMissingField)
		}
	}
	return m, nil
}

func strField(raw map[string]any, key string) string {
	if v, ok := raw[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// vec3From accepts []any (decoded JSON) or []float64 with exactly 3
// numeric components.
func vec3From(v any) (Vec3, bool) {
	var out Vec3
	switch vals := v.(type) {
	case []float64:
		if len(vals) != 3 {
			return out, false
		}
		copy(out[:], vals)
		return out, true
	case []any:
		if len(vals) != 3 {
			return out, false
		}
		for i, raw := range vals {
			f, ok := numFrom(raw)
			if !ok {
				return out, false
			}
			out[i] = f
		}
		return out, true
	default:
		return out, false
	}
}

func pathFrom(v any) ([]Vec3, bool) {
	switch pts := v.(type) {
	case []Vec3:
		return pts, true
	case []any:
		out := make([]Vec3, 0, len(pts))
		for _, raw := range pts {
			triple, ok := vec3From(raw)
			if !ok {
				return nil, false
			}
			out = append(out, triple)
		}
		return out, true
	default:
		return nil, false
	}
}

func numFrom(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

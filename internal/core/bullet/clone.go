package bullet

// CloneSubtree deep-copies root and its descendants: transforms,
// attributes, visual extras and behavior lists. The copy is detached.
// If the arena fills up part way the partial copy is freed and
// (Nil, false) is returned.
func (a *Arena) CloneSubtree(root Index) (Index, bool) {
	if !a.Valid(root) {
		return Nil, false
	}

	type pending struct {
		src, dstParent Index
		slot           int
	}

	var top Index = Nil
	stack := []pending{{src: root, dstParent: Nil, slot: -1}}
	for len(stack) > 0 {
		job := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		dst, ok := a.AllocateOne()
		if !ok {
			if top != Nil {
				a.FreeSubtree(top)
			}
			return Nil, false
		}
		a.copyEntity(dst, job.src)
		if job.dstParent == Nil {
			top = dst
		} else {
			a.SetChild(job.dstParent, job.slot, dst)
		}

		src := &a.entities[job.src]
		a.SetChildCount(dst, len(src.children))
		for slot := len(src.children) - 1; slot >= 0; slot-- {
			if c := src.children[slot]; c != Nil {
				stack = append(stack, pending{src: c, dstParent: dst, slot: slot})
			}
		}
	}
	return top, true
}

func (a *Arena) copyEntity(dst, src Index) {
	d, s := &a.entities[dst], &a.entities[src]
	d.Local = s.Local
	d.World = s.World
	d.RenderID = s.RenderID
	d.Collision.Layer = s.Collision.Layer
	d.Collision.Shape = s.Collision.Shape
	d.Collision.CanSleep = s.Collision.CanSleep
	d.Phase = s.Phase
	d.Graze, d.Power, d.Health = s.Graze, s.Power, s.Health
	if s.visual != nil {
		v := *s.visual
		d.visual = &v
	}
	for _, b := range s.behaviors {
		d.behaviors = append(d.behaviors, b.Clone())
	}
}

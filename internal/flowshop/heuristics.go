package flowshop

import "hyperflow/internal/hh"

// lowLevel - низкоуровневая эвристика над перестановкой.
// apply изменяет p на месте и возвращает новое значение makespan.
type lowLevel struct {
	name    string
	kind    hh.HeuristicType
	usesDOS bool
	usesIOM bool
	apply   func(d *Domain, p []int) int
}

var lowLevels = []lowLevel{
	{name: "swap", kind: hh.Mutation, usesIOM: true, apply: mutateSwap},
	{name: "insert", kind: hh.Mutation, usesIOM: true, apply: mutateInsert},
	{name: "shuffle-segment", kind: hh.Mutation, usesIOM: true, apply: mutateShuffleSegment},
	{name: "ruin-recreate", kind: hh.RuinRecreate, usesIOM: true, apply: ruinRecreate},
	{name: "insert-descent", kind: hh.LocalSearch, usesDOS: true, apply: insertDescent},
	{name: "adjacent-interchange", kind: hh.LocalSearch, usesDOS: true, apply: adjacentInterchange},
	{name: "order-crossover", kind: hh.Crossover, apply: orderCrossover},
}

// strength переводит параметр из [0,1] в число шагов в [1,limit].
func strength(v float64, limit int) int {
	k := int(v * float64(limit))
	if k > limit {
		k = limit
	}
	if k < 1 {
		k = 1
	}
	return k
}

// mutateSwap выполняет серию обменов двух случайных позиций.
func mutateSwap(d *Domain, p []int) int {
	n := len(p)
	if n >= 2 {
		for k := strength(d.iom, n/2); k > 0; k-- {
			i, j := twoPositions(n, d.rng)
			p[i], p[j] = p[j], p[i]
		}
	}
	return d.eval.MustMakespan(p)
}

// mutateInsert выполняет серию случайных вставок.
func mutateInsert(d *Domain, p []int) int {
	n := len(p)
	if n >= 2 {
		for k := strength(d.iom, n/2); k > 0; k-- {
			from, to := twoPositions(n, d.rng)
			applyInsert(p, from, to)
		}
	}
	return d.eval.MustMakespan(p)
}

// mutateShuffleSegment перемешивает случайный отрезок перестановки.
func mutateShuffleSegment(d *Domain, p []int) int {
	n := len(p)
	if n >= 2 {
		l := strength(d.iom, n)
		if l < 2 {
			l = 2
		}
		a := d.rng.Intn(n - l + 1)
		shufflePermutation(p[a:a+l], d.rng)
	}
	return d.eval.MustMakespan(p)
}

// ruinRecreate удаляет случайные работы и вставляет каждую обратно
// в позицию с наименьшим частичным makespan.
func ruinRecreate(d *Domain, p []int) int {
	n := len(p)
	if n < 2 {
		return d.eval.MustMakespan(p)
	}
	k := strength(d.iom, n-1)

	// Частичная перестановка Фишера-Йетса выбирает k удаляемых позиций
	pos := d.positions[:n]
	initPermutation(pos)
	removed := d.removed[:0]
	for i := 0; i < k; i++ {
		j := i + d.rng.Intn(n-i)
		pos[i], pos[j] = pos[j], pos[i]
		removed = append(removed, p[pos[i]])
	}

	d.stamp++
	for _, job := range removed {
		d.mark[job] = d.stamp
	}
	seq := d.partial[:0]
	for _, job := range p {
		if d.mark[job] != d.stamp {
			seq = append(seq, job)
		}
	}

	for _, job := range removed {
		seq = append(seq, job)
		bestAt, bestCost := len(seq)-1, d.eval.PartialMakespan(seq)
		for at := len(seq) - 1; at > 0; at-- {
			seq[at], seq[at-1] = seq[at-1], seq[at]
			if c := d.eval.PartialMakespan(seq); c < bestCost {
				bestAt, bestCost = at-1, c
			}
		}
		// job сейчас в позиции 0; переносим его в лучшую позицию
		applyInsert(seq, 0, bestAt)
	}
	copy(p, seq)
	return d.eval.MustMakespan(p)
}

// insertDescent - локальный поиск с первым улучшением по случайным вставкам.
// Число просматриваемых соседей растёт с depth of search.
func insertDescent(d *Domain, p []int) int {
	n := len(p)
	cost := d.eval.MustMakespan(p)
	if n < 2 {
		return cost
	}
	for k := strength(d.dos, n*n); k > 0; k-- {
		from, to := twoPositions(n, d.rng)
		applyInsert(p, from, to)
		c := d.eval.MustMakespan(p)
		if c < cost {
			cost = c
			continue
		}
		applyInsert(p, to, from)
	}
	return cost
}

// adjacentInterchange - проходы обменами соседних работ, пока есть улучшение.
func adjacentInterchange(d *Domain, p []int) int {
	cost := d.eval.MustMakespan(p)
	for pass := strength(d.dos, 10); pass > 0; pass-- {
		improved := false
		for i := 0; i+1 < len(p); i++ {
			p[i], p[i+1] = p[i+1], p[i]
			c := d.eval.MustMakespan(p)
			if c < cost {
				cost = c
				improved = true
				continue
			}
			p[i], p[i+1] = p[i+1], p[i]
		}
		if !improved {
			break
		}
	}
	return cost
}

// orderCrossover - оператор Order Crossover (OX); второй родитель -
// лучшее известное решение.
func orderCrossover(d *Domain, p []int) int {
	n := len(p)
	if n < 2 || d.best == nil {
		return d.eval.MustMakespan(p)
	}
	p1 := d.partial[:n]
	copy(p1, p)
	p2 := d.best

	// Выбор случайного отрезка [a, b)
	a := d.rng.Intn(n)
	b := d.rng.Intn(n)
	if a > b {
		a, b = b, a
	}
	if a == b {
		// Что бы длина сегмента не была 0
		b = (a + 1) % n
		if a > b {
			a, b = b, a
		}
	}

	for i := range p {
		p[i] = -1
	}

	d.stamp++
	for i := a; i < b; i++ {
		gene := p1[i]
		p[i] = gene
		d.mark[gene] = d.stamp
	}

	// Заполнение оставшихся позиций генами второго родителя
	pos := b % n
	for i := 0; i < n; i++ {
		gene := p2[(b+i)%n]
		if d.mark[gene] == d.stamp {
			continue
		}
		for p[pos] != -1 {
			pos = (pos + 1) % n
		}
		p[pos] = gene
		d.mark[gene] = d.stamp
	}
	return d.eval.MustMakespan(p)
}

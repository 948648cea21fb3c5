package board

// LegalMoves fills list with every legal move in the position: no legal
// move omitted, no illegal move included. Pin, check-evasion, en-passant
// discovered-check, and castle-through-check cases are all handled here
// rather than by filtering after the fact.
func (p *Position) LegalMoves(list *MoveList) {
	p.generateMoves(list, false)
}

// NoisyMoves fills list with the capture and queen-promotion subset used by
// quiescence. When the side to move is in check it generates every evasion
// instead, so quiescence can detect mates.
func (p *Position) NoisyMoves(list *MoveList) {
	p.generateMoves(list, true)
}

func (p *Position) generateMoves(list *MoveList, noisyOnly bool) {
	list.Clear()
	us := p.side
	them := us.Other()
	own := p.byColor[us]
	enemy := p.byColor[them]
	king := p.KingSquare(us)

	checkers := p.attackersTo(king, them, p.occupied)
	if checkers != 0 {
		noisyOnly = false
	}

	// King moves. Slider attacks are computed with the king removed from
	// the occupancy so squares behind the king on a check ray stay
	// excluded.
	occNoKing := p.occupied &^ king.Bitboard()
	kingTargets := KingAttacks(king) &^ own
	if noisyOnly {
		kingTargets &= enemy
	}
	for t := kingTargets; t != 0; {
		to := t.PopFirst()
		if p.attackersTo(to, them, occNoKing) != 0 {
			continue
		}
		if enemy.Has(to) {
			list.Add(NewMove(king, to, CaptureMove))
		} else {
			list.Add(NewMove(king, to, QuietMove))
		}
	}

	// Double check: only the king can move.
	if checkers.Count() > 1 {
		return
	}

	// In single check every non-king move must capture the checker or
	// block its ray.
	allowed := ^Bitboard(0)
	if checkers != 0 {
		allowed = Between(king, checkers.First()) | checkers
	}

	pinned := p.pinnedPieces(us, king)
	p.genPawnMoves(list, allowed, pinned, king, noisyOnly)
	p.genPieceMoves(list, allowed, pinned, king, noisyOnly)
	if checkers == 0 && !noisyOnly {
		p.genCastles(list)
	}
}

// pinnedPieces returns our pieces that are absolutely pinned to the king.
// A pinned piece may still move along the pin line (Line(king, piece)).
func (p *Position) pinnedPieces(us Color, king Square) Bitboard {
	them := us.Other()
	var pinned Bitboard
	snipers := RookAttacks(king, 0)&(p.byPiece[NewPiece(them, Rook)]|p.byPiece[NewPiece(them, Queen)]) |
		BishopAttacks(king, 0)&(p.byPiece[NewPiece(them, Bishop)]|p.byPiece[NewPiece(them, Queen)])
	for s := snipers; s != 0; {
		sniper := s.PopFirst()
		blockers := Between(king, sniper) & p.occupied
		if blockers.Count() == 1 && blockers&p.byColor[us] != 0 {
			pinned |= blockers
		}
	}
	return pinned
}

func (p *Position) genPieceMoves(list *MoveList, allowed, pinned Bitboard, king Square, noisyOnly bool) {
	us := p.side
	enemy := p.byColor[us.Other()]
	targetMask := allowed &^ p.byColor[us]
	if noisyOnly {
		targetMask &= enemy
	}

	for t := Knight; t <= Queen; t++ {
		for pieces := p.byPiece[NewPiece(us, t)]; pieces != 0; {
			from := pieces.PopFirst()
			var att Bitboard
			switch t {
			case Knight:
				att = KnightAttacks(from)
			case Bishop:
				att = BishopAttacks(from, p.occupied)
			case Rook:
				att = RookAttacks(from, p.occupied)
			case Queen:
				att = QueenAttacks(from, p.occupied)
			}
			att &= targetMask
			if pinned.Has(from) {
				att &= Line(king, from)
			}
			for att != 0 {
				to := att.PopFirst()
				if enemy.Has(to) {
					list.Add(NewMove(from, to, CaptureMove))
				} else {
					list.Add(NewMove(from, to, QuietMove))
				}
			}
		}
	}
}

func (p *Position) genPawnMoves(list *MoveList, allowed, pinned Bitboard, king Square, noisyOnly bool) {
	us := p.side
	them := us.Other()
	enemy := p.byColor[them]

	var promoRank, startRank Bitboard
	var up int
	if us == White {
		promoRank, startRank, up = Rank8, Rank2, 8
	} else {
		promoRank, startRank, up = Rank1, Rank7, -8
	}

	pawns := p.byPiece[NewPiece(us, Pawn)]
	for rest := pawns; rest != 0; {
		from := rest.PopFirst()
		pinLine := ^Bitboard(0)
		if pinned.Has(from) {
			pinLine = Line(king, from)
		}

		for caps := PawnAttacks(us, from) & enemy & allowed & pinLine; caps != 0; {
			to := caps.PopFirst()
			if promoRank.Has(to) {
				list.Add(NewMove(from, to, PromoCaptureQueen))
				if !noisyOnly {
					list.Add(NewMove(from, to, PromoCaptureRook))
					list.Add(NewMove(from, to, PromoCaptureBishop))
					list.Add(NewMove(from, to, PromoCaptureKnight))
				}
			} else {
				list.Add(NewMove(from, to, CaptureMove))
			}
		}

		to := Square(int(from) + up)
		if !p.occupied.Has(to) {
			if to.Bitboard()&allowed&pinLine != 0 {
				switch {
				case promoRank.Has(to):
					list.Add(NewMove(from, to, PromoQueen))
					if !noisyOnly {
						list.Add(NewMove(from, to, PromoRook))
						list.Add(NewMove(from, to, PromoBishop))
						list.Add(NewMove(from, to, PromoKnight))
					}
				case !noisyOnly:
					list.Add(NewMove(from, to, QuietMove))
				}
			}
			if startRank.Has(from) && !noisyOnly {
				to2 := Square(int(from) + 2*up)
				if !p.occupied.Has(to2) && to2.Bitboard()&allowed&pinLine != 0 {
					list.Add(NewMove(from, to2, DoublePush))
				}
			}
		}
	}

	// En passant is validated by applying it and testing the king: that one
	// check covers the horizontal discovered-check case, en passant while
	// pinned, and capturing a checking pawn.
	if p.epSquare != NoSquare {
		for cand := PawnAttacks(them, p.epSquare) & pawns; cand != 0; {
			from := cand.PopFirst()
			m := NewMove(from, p.epSquare, EnPassant)
			p.MakeMove(m)
			legal := !p.InCheck(us)
			p.UnmakeMove()
			if legal {
				list.Add(m)
			}
		}
	}
}

// genCastles is only called when not in check; the through/into-check
// squares are tested here and the empty-path squares by occupancy.
func (p *Position) genCastles(list *MoveList) {
	them := p.side.Other()
	occ := p.occupied
	if p.side == White {
		if p.castling.Has(WhiteKingside) && occ&(SquareF1.Bitboard()|SquareG1.Bitboard()) == 0 &&
			!p.IsAttacked(SquareF1, them) && !p.IsAttacked(SquareG1, them) {
			list.Add(NewMove(SquareE1, SquareG1, CastleKingside))
		}
		if p.castling.Has(WhiteQueenside) && occ&(SquareB1.Bitboard()|SquareC1.Bitboard()|SquareD1.Bitboard()) == 0 &&
			!p.IsAttacked(SquareD1, them) && !p.IsAttacked(SquareC1, them) {
			list.Add(NewMove(SquareE1, SquareC1, CastleQueenside))
		}
	} else {
		if p.castling.Has(BlackKingside) && occ&(SquareF8.Bitboard()|SquareG8.Bitboard()) == 0 &&
			!p.IsAttacked(SquareF8, them) && !p.IsAttacked(SquareG8, them) {
			list.Add(NewMove(SquareE8, SquareG8, CastleKingside))
		}
		if p.castling.Has(BlackQueenside) && occ&(SquareB8.Bitboard()|SquareC8.Bitboard()|SquareD8.Bitboard()) == 0 &&
			!p.IsAttacked(SquareD8, them) && !p.IsAttacked(SquareC8, them) {
			list.Add(NewMove(SquareE8, SquareC8, CastleQueenside))
		}
	}
}

package ast

// Typed views over the most used node kinds. A view holds no state of its
// own; every accessor reads the property bag.

// Deal is a typed view of a KindDeal node.
type Deal struct{ *Node }

// AsDeal returns a Deal view when n is a deal.
func (n *Node) AsDeal() (Deal, bool) {
	return Deal{n}, n != nil && n.Kind == KindDeal
}

func (d Deal) DealType() string      { return d.Props.String("dealType") }
func (d Deal) Currency() string      { return d.Props.String("currency") }
func (d Deal) EntryDate() string     { return d.Props.String("entryDate") }
func (d Deal) ExitDate() string      { return d.Props.String("exitDate") }
func (d Deal) AnalysisStart() string { return d.Props.String("analysisStart") }
func (d Deal) AssetIDs() []string    { return d.Props.Strings("assetIds") }
func (d Deal) StreamIDs() []string   { return d.Props.Strings("streamIds") }
func (d Deal) CapitalStackID() string {
	return d.Props.String("capitalStackId")
}

// HoldingPeriodYears returns the holding period and whether it is numeric.
func (d Deal) HoldingPeriodYears() (float64, bool) {
	n, ok := d.Props.Number("holdingPeriodYears")
	return n.Float, ok
}

// Asset is a typed view of a KindAsset node.
type Asset struct{ *Node }

func (n *Node) AsAsset() (Asset, bool) {
	return Asset{n}, n != nil && n.Kind == KindAsset
}

func (a Asset) DealID() string         { return a.Props.String("dealId") }
func (a Asset) Category() string       { return a.Props.String("category") }
func (a Asset) StreamIDs() []string    { return a.Props.Strings("streamIds") }
func (a Asset) ContractIDs() []string  { return a.Props.Strings("contractIds") }
func (a Asset) ComponentIDs() []string { return a.Props.Strings("componentIds") }

// Stream is a typed view of a KindStream node.
type Stream struct{ *Node }

func (n *Node) AsStream() (Stream, bool) {
	return Stream{n}, n != nil && n.Kind == KindStream
}

func (s Stream) Scope() string    { return s.Props.String("scope") }
func (s Stream) Category() string { return s.Props.String("category") }
func (s Stream) SubType() string  { return s.Props.String("subType") }

// Schedule returns the nested schedule block, if any.
func (s Stream) Schedule() (*Map, bool) {
	m, ok := s.Props.Get("schedule").(*Map)
	return m, ok
}

// Contract is a typed view of a KindContract node.
type Contract struct{ *Node }

func (n *Node) AsContract() (Contract, bool) {
	return Contract{n}, n != nil && n.Kind == KindContract
}

func (c Contract) DealID() string       { return c.Props.String("dealId") }
func (c Contract) ContractType() string { return c.Props.String("contractType") }
func (c Contract) StartDate() string    { return c.Props.String("startDate") }
func (c Contract) EndDate() string      { return c.Props.String("endDate") }

// PartyIDs returns the partyId of every parties entry.
func (c Contract) PartyIDs() []string {
	list, _ := c.Props.Get("parties").(List)
	var ids []string
	for _, entry := range list {
		m, ok := entry.(*Map)
		if !ok {
			continue
		}
		if v, ok := m.Get("partyId"); ok {
			if s, ok := Text(v); ok {
				ids = append(ids, s)
			}
		}
	}
	return ids
}

// Portfolio is a typed view of a KindPortfolio node.
type Portfolio struct{ *Node }

func (n *Node) AsPortfolio() (Portfolio, bool) {
	return Portfolio{n}, n != nil && n.Kind == KindPortfolio
}

func (p Portfolio) DealIDs() []string   { return p.Props.Strings("dealIds") }
func (p Portfolio) StreamIDs() []string { return p.Props.Strings("streamIds") }

// Fund is a typed view of a KindFund node.
type Fund struct{ *Node }

func (n *Node) AsFund() (Fund, bool) {
	return Fund{n}, n != nil && n.Kind == KindFund
}

func (f Fund) FundType() string       { return f.Props.String("fundType") }
func (f Fund) PortfolioIDs() []string { return f.Props.Strings("portfolioIds") }
func (f Fund) StreamIDs() []string    { return f.Props.Strings("streamIds") }

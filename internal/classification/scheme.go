// Package classification holds the item classification schemes. Each scheme is
// an ordered set of labels; a label's behavior flags drive BOM and routing
// rules for items carrying that code.
package classification

// BehaviorFlags are the policy attributes attached to a classification code.
type BehaviorFlags struct {
	RequiresBOM     bool `json:"requires_bom"`
	RequiresRouting bool `json:"requires_routing"`
	IsProduction    bool `json:"is_production"`
	IsAssembly      bool `json:"is_assembly"`
	SaleAllowed     bool `json:"sale_allowed"`
}

// Text is a display string per locale ("ko", "en", "zh").
type Text map[string]string

// Label is a single classification code within a scheme.
type Label struct {
	Code        string        `json:"code"`
	Name        Text          `json:"name"`
	Description Text          `json:"description"`
	Icon        string        `json:"icon"`
	Behavior    BehaviorFlags `json:"behavior"`
}

// Scheme groups labels under a stable identifier.
type Scheme struct {
	ID              string  `json:"id"`
	Version         int     `json:"version"`
	Name            Text    `json:"name"`
	Description     Text    `json:"description"`
	IsSystemDefault bool    `json:"is_system_default"`
	Labels          []Label `json:"labels"`
}

// Scheme identifiers.
const (
	SchemeSimple   = "simple"
	SchemeExtended = "extended"
)

// Classification codes.
const (
	CodePurchase   = "PURCHASE"
	CodePart       = "PART"
	CodeModule     = "MODULE"
	CodeAssembly   = "ASSEMBLY"
	CodeProduction = "PRODUCTION"
	CodeBundle     = "BUNDLE"
)

var (
	purchaseFlags   = BehaviorFlags{SaleAllowed: true}
	assemblyFlags   = BehaviorFlags{RequiresBOM: true, IsAssembly: true, SaleAllowed: true}
	productionFlags = BehaviorFlags{RequiresBOM: true, RequiresRouting: true, IsProduction: true, SaleAllowed: true}
)

var simpleScheme = Scheme{
	ID:      SchemeSimple,
	Version: 1,
	Name: Text{
		"ko": "단순형 (사입/조립/생산)",
		"en": "Simple (Purchase/Assembly/Production)",
		"zh": "简单型 (采购/组装/生产)",
	},
	Description: Text{
		"ko": "기본 3가지 분류로 대부분의 제조/유통 업무 커버",
		"en": "3 basic classifications covering most manufacturing/distribution needs",
		"zh": "3种基本分类，涵盖大多数制造/分销需求",
	},
	IsSystemDefault: true,
	Labels: []Label{
		{
			Code: CodePurchase,
			Name: Text{"ko": "사입", "en": "Purchase", "zh": "采购"},
			Description: Text{
				"ko": "외부에서 구매한 상품 (BOM/공정 불필요)",
				"en": "Items purchased from external suppliers (no BOM/routing)",
				"zh": "从外部采购的商品（无需BOM/工艺）",
			},
			Icon:     "📦",
			Behavior: purchaseFlags,
		},
		{
			Code: CodeAssembly,
			Name: Text{"ko": "조립", "en": "Assembly", "zh": "组装"},
			Description: Text{
				"ko": "부품을 조립하여 만드는 상품 (BOM 필요, 공정 간단)",
				"en": "Items assembled from components (BOM required, simple routing)",
				"zh": "由零部件组装的商品（需要BOM，简单工艺）",
			},
			Icon:     "🔧",
			Behavior: assemblyFlags,
		},
		{
			Code: CodeProduction,
			Name: Text{"ko": "생산", "en": "Production", "zh": "生产"},
			Description: Text{
				"ko": "생산 공정을 거쳐 만드는 상품 (BOM + 공정 필요)",
				"en": "Items manufactured through production processes (BOM + routing required)",
				"zh": "通过生产工艺制造的商品（需要BOM和工艺）",
			},
			Icon:     "🏭",
			Behavior: productionFlags,
		},
	},
}

var extendedScheme = Scheme{
	ID:      SchemeExtended,
	Version: 1,
	Name: Text{
		"ko": "확장형 (사입/부품/모듈/조립/생산/번들)",
		"en": "Extended (Purchase/Part/Module/Assembly/Production/Bundle)",
		"zh": "扩展型 (采购/零件/模块/组装/生产/套装)",
	},
	Description: Text{
		"ko": "세분화된 6가지 분류로 복잡한 제조 업무 지원",
		"en": "6 detailed classifications for complex manufacturing workflows",
		"zh": "6种详细分类，支持复杂的制造业务流程",
	},
	Labels: []Label{
		{
			Code:        CodePurchase,
			Name:        Text{"ko": "사입", "en": "Purchase", "zh": "采购"},
			Description: Text{"ko": "외부 구매 상품", "en": "Purchased items", "zh": "外部采购商品"},
			Icon:        "📦",
			Behavior:    purchaseFlags,
		},
		{
			Code:        CodePart,
			Name:        Text{"ko": "부품", "en": "Part", "zh": "零件"},
			Description: Text{"ko": "조립/생산에 사용되는 부품", "en": "Parts for assembly/production", "zh": "用于组装/生产的零件"},
			Icon:        "⚙️",
			Behavior:    BehaviorFlags{},
		},
		{
			Code:        CodeModule,
			Name:        Text{"ko": "모듈", "en": "Module", "zh": "模块"},
			Description: Text{"ko": "부품으로 구성된 중간 단계 모듈", "en": "Intermediate modules from parts", "zh": "由零件组成的中间模块"},
			Icon:        "🧩",
			Behavior:    BehaviorFlags{RequiresBOM: true, IsAssembly: true},
		},
		{
			Code:        CodeAssembly,
			Name:        Text{"ko": "조립", "en": "Assembly", "zh": "组装"},
			Description: Text{"ko": "모듈/부품을 조립한 상품", "en": "Assembled from modules/parts", "zh": "由模块/零件组装的商品"},
			Icon:        "🔧",
			Behavior:    assemblyFlags,
		},
		{
			Code:        CodeProduction,
			Name:        Text{"ko": "생산", "en": "Production", "zh": "生产"},
			Description: Text{"ko": "공정을 거쳐 생산한 상품", "en": "Manufactured through processes", "zh": "通过工艺生产的商品"},
			Icon:        "🏭",
			Behavior:    productionFlags,
		},
		{
			Code:        CodeBundle,
			Name:        Text{"ko": "번들", "en": "Bundle", "zh": "套装"},
			Description: Text{"ko": "여러 상품을 묶은 세트", "en": "Bundle of multiple items", "zh": "多个商品的套装"},
			Icon:        "📦🎁",
			// bundles ship through their own outbound path, not assembly deduction
			Behavior: BehaviorFlags{RequiresBOM: true, SaleAllowed: true},
		},
	},
}

package morph

import (
	"sort"
	"unicode/utf8"
)

// derivationEndings follow a noun to form a 하다/되다/시키다 predicate.
var derivationEndings = longestFirst(
	"합니다", "했습니다", "하였습니다", "해주세요", "해주십시오", "해주시기", "해주시면",
	"해요", "했어요", "했는데", "하는데", "하고", "하는", "하다", "하여", "해서",
	"하게", "합시다", "해야", "하면", "했다", "했고", "함",
	"됩니다", "되었습니다", "됐습니다", "됐어요", "되어", "돼요", "되는", "되고",
	"되서", "돼서", "된", "됨", "되요",
	"시켜주세요", "시켜", "바랍니다",
)

// copulaEndings follow a noun as 이다 forms.
var copulaEndings = longestFirst(
	"입니다", "이에요", "예요", "인데", "인지", "이다", "이고", "이라",
	"이라서", "이라고", "인가요", "인가", "였어요", "이었어요",
)

// predicateEndings mark verbs and adjectives. Single-syllable endings that
// also close common nouns (고, 서, 게, 지) are not listed.
var predicateEndings = longestFirst(
	"습니다", "니다", "어요", "아요", "여요", "워요", "세요", "네요", "지요",
	"어서", "아서", "워서", "는데", "은데", "지만", "으면", "니까", "었다",
	"았다", "는다", "겠다", "하고", "하게", "해서", "죠", "요", "다",
)

// particles are case markers and postpositions split off noun stems.
var particles = longestFirst(
	"에서는", "에게서", "으로는", "에서도", "까지는", "때문에", "에서", "에게",
	"한테", "으로", "까지", "부터", "처럼", "보다", "마다", "이나", "이랑",
	"에는", "에도", "은", "는", "이", "가", "을", "를", "에", "의", "도",
	"만", "와", "과", "로", "랑",
)

var builtinNouns = []string{
	"앞", "뒤", "옆", "차", "차량", "주민", "아이", "민원", "버스", "정류장",
	"신호등", "횡단보도", "인도", "보도", "하수구", "냄새", "공사장", "소리",
	"표지판", "불법", "밤", "새벽", "동네", "주변", "관리", "확인", "상태",
	"사고", "행사", "확성기", "고장", "문제", "위험", "청소", "나무", "벤치",
	"화장실", "놀이터", "담배", "개", "고양이", "배수구", "맨홀", "포트홀",
	// end in 다 and would otherwise read as predicates
	"바다", "판다",
}

var builtinNonNouns = []string{
	"여기", "저기", "거기", "이곳", "그곳", "너무", "정말", "진짜", "매일",
	"계속", "자꾸", "항상", "아직", "다시", "좀", "더", "왜", "도대체", "맨날",
	"요즘", "갑자기", "전부", "모두", "또", "잘", "안", "못", "늘", "아무도",
	"이", "그", "저", "이거", "그거", "저거", "뭐", "누가", "어디",
}

func longestFirst(items ...string) []string {
	out := append([]string(nil), items...)
	sort.SliceStable(out, func(i, j int) bool {
		return utf8.RuneCountInString(out[i]) > utf8.RuneCountInString(out[j])
	})
	return out
}

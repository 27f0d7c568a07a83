package prompt

// Defaults returns the built-in Korean prompt templates. The placeholders are
// Go text/template fields filled in by the decision stages.
func Defaults() Templates {
	return Templates{
		NewsAnalysis: `당신은 암호화폐 뉴스 분석 전문가입니다.
최근 24시간 동안의 암호화폐 관련 뉴스만을 분석하여 투자 결정을 내려주세요.
기술적 지표나 가격은 고려하지 말고, 순수하게 뉴스 내용만으로 판단해주세요.

뉴스 데이터:
{{.NewsData}}

다음 형식으로 분석 결과를 제공해주세요:
1. 투자 결정: (매수/매도/관망)
2. 투자 비중: (0-100%)
3. 결정 이유: (뉴스 기반 분석)
4. 주요 뉴스 요약
5. 시장 영향도: (상/중/하)
`,
		PriceAnalysis: `당신은 암호화폐 기술적 분석 전문가입니다.
다음 데이터를 기반으로 투자 결정을 내려주세요.

30분 기준 기술적 지표:
- RSI: {{.RSI}}
- Stochastic K/D: {{.StochK}}/{{.StochD}}
- MACD: {{.MACD}}
- 볼린저 밴드:
  상단: {{.BollUpper}}
  중간: {{.BollMiddle}}
  하단: {{.BollLower}}

24시간 추세:
- 이동평균선: {{.MovingAverages}}
- 거래량: {{.Volume24H}}

호가 데이터:
- 매수호가: {{.Bids}}
- 매도호가: {{.Asks}}

다음 형식으로 분석 결과를 제공해주세요:
1. 투자 결정: (매수/매도/관망)
2. 투자 비중: (0-100%)
3. 기술적 분석 요약
4. 주요 지표 해석
5. 목표가: (매수/매도 시)
6. 손절가: (매수/매도 시)
7. 투자 시점: (단기/중기/장기)
`,
		FinalDecision: `당신은 암호화폐 투자 최고 결정권자입니다.
뉴스 분석과 기술적 분석 결과를 종합하여 최종 투자 결정을 내려주세요.
결정을 내릴때 뉴스 {{.NewsWeight}}, 가격 {{.PriceWeight}}의 비율로 생각해서 결정해주세요. 즉, 뉴스의 영향력이 더 큽니다.

뉴스 분석 결과:
{{.NewsAnalysis}}

기술적 분석 결과:
{{.PriceAnalysis}}

현재 시장 상황:
- 현재가: {{.CurrentPrice}}
- RSI: {{.RSI}}
- MACD: {{.MACD}}

다음 형식으로 최종 결정을 제공해주세요:
1. 최종 투자 결정: (매수/매도/관망)
2. 최종 투자 비중: (0-100%)
3. 결정 이유: (종합적인 분석)
4. 위험도: (상/중/하)
5. 투자 전략: (단기/중기/장기)
6. 목표가 및 손절가
7. 주의사항
`,
	}
}
